package util

import "unicode/utf8"

// MaxLogBodySize caps request bodies kept in the interception log (10KB).
const MaxLogBodySize = 10 * 1024

const truncatedSuffix = "...(truncated)"

// TruncateBody cuts data to at most maxSize bytes and marks the cut. The cut
// never splits a UTF-8 sequence. maxSize <= 0 means MaxLogBodySize.
func TruncateBody(data string, maxSize int) string {
	if maxSize <= 0 {
		maxSize = MaxLogBodySize
	}
	if len(data) <= maxSize {
		return data
	}
	cut := maxSize
	for cut > 0 && !utf8.RuneStart(data[cut]) {
		cut--
	}
	return data[:cut] + truncatedSuffix
}

// Ellipsis shortens s to width runes for table output, ending in "...".
func Ellipsis(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width <= 3 {
		return string([]rune(s)[:width])
	}
	return string([]rune(s)[:width-3]) + "..."
}
