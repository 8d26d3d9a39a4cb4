package utils

import (
	"strings"
	"unicode"
)

// SanitizeName makes a Tableau resource name safe for use inside an S3 key.
// Path separators and control characters are replaced, surrounding whitespace
// is dropped.
func SanitizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "untitled"
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune('_')
		case unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// Truncate caps a name at max runes so generated keys stay well under the S3
// key length limit.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
