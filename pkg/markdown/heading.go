package markdown

import (
	"strings"
)

// HeadingID derives an anchor id from raw heading text: lower-cased ASCII
// alphanumeric runs joined by '-'. Scanning stops at the first newline.
func HeadingID(raw []byte) string {
	var builder strings.Builder
	pendingDash := false
	for _, c := range raw {
		if c == '\n' {
			break
		}
		if !isAlnum(c) {
			pendingDash = builder.Len() > 0
			continue
		}
		if pendingDash {
			builder.WriteByte('-')
			pendingDash = false
		}
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		builder.WriteByte(c)
	}
	return builder.String()
}

func clampHeading(level int) int {
	return max(1, min(level, 6))
}
