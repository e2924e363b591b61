package utils

import "strings"

// TruncateRunes trims surrounding whitespace and hard-caps the result at max
// runes. Capture-side truncation: over-long input is cut, never rejected.
func TruncateRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// FirstRunes returns at most max leading runes of s, without trimming.
func FirstRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
