package pretty_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdsite/internal/ui/pretty"
)

func TestNewStyles_ColorDisabled(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	require.NotNil(t, styles)

	// With color disabled, styles should return unmodified text
	text := "test"
	assert.Equal(t, text, styles.Bold.Render(text), "No-color Bold should not add formatting")
	assert.Equal(t, text, styles.Error.Render(text), "No-color Error should not add formatting")
	assert.Equal(t, text, styles.Note.Render(text), "No-color Note should not add formatting")
}

func TestIsColorEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.True(t, pretty.IsColorEnabled(pretty.ColorAlways, &buf), "always mode should return true")
	assert.False(t, pretty.IsColorEnabled(pretty.ColorNever, os.Stdout), "never mode should return false")
	assert.False(t, pretty.IsColorEnabled(pretty.ColorAuto, &buf), "auto mode with non-TTY should return false")
	assert.False(t, pretty.IsColorEnabled("", &buf), "empty mode behaves like auto")
}

//nolint:paralleltest // Uses t.Setenv.
func TestIsColorEnabled_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, pretty.IsColorEnabled(pretty.ColorAuto, os.Stdout), "NO_COLOR should disable color in auto mode")
	assert.True(t, pretty.IsColorEnabled(pretty.ColorAlways, os.Stdout), "always mode ignores NO_COLOR")
}
