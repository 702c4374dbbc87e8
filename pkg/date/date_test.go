package date_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdsite/pkg/date"
)

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, value := range []string{
		"2024-02-29T23:59:59+00:00",
		"1999-12-31T00:00:00-05:00",
		"2023-06-01T12:30:45+14:00",
		"2001-01-01T01:02:03-12:00",
	} {
		t.Run(value, func(t *testing.T) {
			t.Parallel()

			d, err := date.Parse(value)
			require.NoError(t, err)
			assert.Equal(t, value, d.Format(date.StyleRFC3339))
			assert.Equal(t, value, d.String())
		})
	}
}

func TestParse_DateOnly(t *testing.T) {
	t.Parallel()

	d, err := date.Parse("2021-03-07")
	require.NoError(t, err)
	assert.Equal(t, date.Date{Year: 2021, Month: 3, Day: 7}, d)
	assert.Equal(t, "2021-03-07T00:00:00+00:00", d.Format(date.StyleRFC3339))
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	for _, value := range []string{
		"",
		"2021-3-07",
		"2021-02-30",
		"2021-13-01",
		"2021-01-01T24:00:00+00:00",
		"2021-01-01T10:00:00+01:30",
		"2021-01-01T10:00:00Z",
		"2021-01-01 10:00:00+01:00",
		"2021-01-01T10:00:00+15:00",
		"2024-01-02T03:04:05-00:00",
		"abcd-01-01",
	} {
		t.Run(value, func(t *testing.T) {
			t.Parallel()

			_, err := date.Parse(value)
			require.Error(t, err)
			assert.ErrorIs(t, err, date.ErrInvalidDate)
		})
	}
}

func TestFormat_Styles(t *testing.T) {
	t.Parallel()

	d := date.MustParse("2023-09-05T08:00:00+02:00")

	tests := []struct {
		style date.Style
		want  string
	}{
		{date.StyleShort, "Sep 5, 2023"},
		{date.StyleLong, "September 5, 2023"},
		{date.StyleRFC3339, "2023-09-05T08:00:00+02:00"},
		{date.Style("bogus"), "2023-09-05T08:00:00+02:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Format(tt.style), string(tt.style))
	}
}

func TestParseStyle(t *testing.T) {
	t.Parallel()

	style, err := date.ParseStyle("long")
	require.NoError(t, err)
	assert.Equal(t, date.StyleLong, style)

	_, err = date.ParseStyle("medium")
	require.ErrorIs(t, err, date.ErrInvalidStyle)
}

func TestCompare(t *testing.T) {
	t.Parallel()

	early := date.MustParse("2023-01-01T10:00:00+02:00")
	late := date.MustParse("2023-01-01T09:00:00+00:00")

	assert.Equal(t, -1, early.Compare(late))
	assert.Equal(t, 1, late.Compare(early))
	assert.Equal(t, 0, early.Compare(early))
	assert.True(t, date.Date{}.IsZero())
	assert.False(t, early.IsZero())
}
