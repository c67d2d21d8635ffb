// Package text provides utilities for text processing and analysis.
// Counting and truncation operate on Unicode code points (runes), not bytes,
// so multi-byte scripts such as Chinese and Japanese are handled correctly.
package text

// CountRunes counts the number of Unicode characters (runes) in the given text.
//
// Examples:
//
//	CountRunes("hello")     // returns 5 (ASCII text)
//	CountRunes("你好世界")   // returns 4 (Chinese text)
//	CountRunes("")          // returns 0 (empty string)
func CountRunes(text string) int {
	return len([]rune(text))
}

// ClampRunes truncates text to at most limit runes. No marker is appended.
func ClampRunes(text string, limit int) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit])
}

// TruncateRunes truncates text to at most limit runes and appends marker
// when truncation occurred. The marker does not count against the limit;
// the truncation is lossy and one-way.
func TruncateRunes(text string, limit int, marker string) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit]) + marker
}
