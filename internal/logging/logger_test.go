package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdsite/internal/logging"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		level    string
		expected log.Level
	}{
		{"debug level", "debug", log.DebugLevel},
		{"info level", "info", log.InfoLevel},
		{"warn level", "warn", log.WarnLevel},
		{"warning level", "warning", log.WarnLevel},
		{"error level", "error", log.ErrorLevel},
		{"invalid defaults to info", "invalid", log.InfoLevel},
		{"empty defaults to info", "", log.InfoLevel},
		{"case insensitive DEBUG", "DEBUG", log.DebugLevel},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			logger := logging.New(testCase.level)
			require.NotNil(t, logger)
			assert.Equal(t, testCase.expected, logger.GetLevel())
		})
	}
}

func TestNewInteractive(t *testing.T) {
	t.Parallel()

	logger := logging.NewInteractive()
	require.NotNil(t, logger)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
	assert.Equal(t, "gomdsite", logger.GetPrefix())
}

//nolint:paralleltest // Modifies the default logger.
func TestSetDefault(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	newLogger := logging.New("error")
	logging.SetDefault(newLogger)
	assert.Same(t, newLogger, logging.Default())

	logging.SetLevel("debug")
	assert.Equal(t, log.DebugLevel, newLogger.GetLevel())
}

func TestContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "debug")

	ctx := logging.WithLogger(context.Background(), logger)
	assert.Same(t, logger, logging.FromContext(ctx))

	ctx = logging.WithFields(ctx, logging.FieldSlug, "hello")
	logging.FromContext(ctx).Info("rendered")
	assert.Contains(t, buf.String(), "rendered")
	assert.Contains(t, buf.String(), "slug=hello")

	//nolint:staticcheck // Exercises the nil-context fallback.
	assert.NotNil(t, logging.FromContext(nil))
	assert.NotNil(t, logging.FromContext(context.Background()))
}
