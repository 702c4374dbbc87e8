// Package date parses and formats the restricted RFC 3339 dates used in
// post metadata.
package date

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate indicates a string that is not in the accepted subset.
var ErrInvalidDate = errors.New("invalid date")

// ErrInvalidStyle indicates an unknown formatting style.
var ErrInvalidStyle = errors.New("invalid date style")

// Style selects how a Date is formatted.
type Style string

// Supported styles.
const (
	StyleShort   Style = "short"   // Jan 2, 2006
	StyleLong    Style = "long"    // January 2, 2006
	StyleRFC3339 Style = "rfc3339" // 2006-01-02T15:04:05-07:00
)

// styleLayouts maps styles to Go reference layouts.
var styleLayouts = map[Style]string{
	StyleShort:   "Jan 2, 2006",
	StyleLong:    "January 2, 2006",
	StyleRFC3339: "2006-01-02T15:04:05-07:00",
}

// ParseStyle validates a style name.
func ParseStyle(name string) (Style, error) {
	style := Style(name)
	if _, ok := styleLayouts[style]; !ok {
		return "", fmt.Errorf("%w: %q (valid: short, long, rfc3339)", ErrInvalidStyle, name)
	}
	return style, nil
}

// Date is a calendar date and wall time with a whole-hour UTC offset.
type Date struct {
	Year      int
	Month     int
	Day       int
	Hour      int
	Minute    int
	Second    int
	TZOffsetH int
}

const (
	dateOnlyLen = len("2006-01-02")
	fullLen     = len("2006-01-02T15:04:05-07:00")
)

// Parse accepts "YYYY-MM-DD" and "YYYY-MM-DDTHH:MM:SS±HH:00".
// Date-only strings get midnight UTC.
func Parse(value string) (Date, error) {
	switch len(value) {
	case dateOnlyLen:
		return parseDateOnly(value)
	case fullLen:
		return parseFull(value)
	default:
		return Date{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS+HH:00)", ErrInvalidDate, value)
	}
}

// MustParse is like Parse but panics on error. It is intended for tests and
// package-level values.
func MustParse(value string) Date {
	d, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return d
}

func parseDateOnly(value string) (Date, error) {
	var d Date
	var ok bool
	if d.Year, ok = digits(value, 0, 4); !ok || value[4] != '-' {
		return Date{}, invalid(value)
	}
	if d.Month, ok = digits(value, 5, 2); !ok || value[7] != '-' {
		return Date{}, invalid(value)
	}
	if d.Day, ok = digits(value, 8, 2); !ok {
		return Date{}, invalid(value)
	}
	return d, d.validate(value)
}

func parseFull(value string) (Date, error) {
	d, err := parseDateOnly(value[:dateOnlyLen])
	if err != nil {
		return Date{}, invalid(value)
	}
	rest := value[dateOnlyLen:]
	// rest is "THH:MM:SS±HH:00".
	if rest[0] != 'T' || rest[3] != ':' || rest[6] != ':' || rest[12] != ':' {
		return Date{}, invalid(value)
	}
	var ok bool
	if d.Hour, ok = digits(rest, 1, 2); !ok {
		return Date{}, invalid(value)
	}
	if d.Minute, ok = digits(rest, 4, 2); !ok {
		return Date{}, invalid(value)
	}
	if d.Second, ok = digits(rest, 7, 2); !ok {
		return Date{}, invalid(value)
	}
	if d.TZOffsetH, ok = digits(rest, 10, 2); !ok || rest[13:] != "00" {
		return Date{}, invalid(value)
	}
	switch rest[9] {
	case '+':
	case '-':
		// "-00:00" marks an unknown offset and would not format back.
		if d.TZOffsetH == 0 {
			return Date{}, invalid(value)
		}
		d.TZOffsetH = -d.TZOffsetH
	default:
		return Date{}, invalid(value)
	}
	return d, d.validate(value)
}

func (d Date) validate(value string) error {
	if d.Month < 1 || d.Month > 12 || d.Hour > 23 || d.Minute > 59 || d.Second > 59 ||
		d.TZOffsetH < -12 || d.TZOffsetH > 14 {
		return invalid(value)
	}
	// time.Date normalizes out-of-range days, so a round trip detects them.
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	if t.Day() != d.Day {
		return invalid(value)
	}
	return nil
}

func invalid(value string) error {
	return fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

func digits(value string, start, n int) (int, bool) {
	result := 0
	for i := start; i < start+n; i++ {
		c := value[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		result = result*10 + int(c-'0')
	}
	return result, true
}

// Time converts the date to a time.Time in its own fixed zone.
func (d Date) Time() time.Time {
	zone := time.FixedZone("", d.TZOffsetH*60*60)
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, zone)
}

// Format renders the date in style. Unknown styles fall back to rfc3339.
func (d Date) Format(style Style) string {
	layout, ok := styleLayouts[style]
	if !ok {
		layout = styleLayouts[StyleRFC3339]
	}
	return d.Time().Format(layout)
}

// String renders the date in rfc3339 style.
func (d Date) String() string {
	return d.Format(StyleRFC3339)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other as instants.
func (d Date) Compare(other Date) int {
	return d.Time().Compare(other.Time())
}
