package utils

import "github.com/charmbracelet/x/ansi"

const ellipsis = "..."

// Truncate shortens s to maxLen display cells and appends an ellipsis.
// Multi-byte runes and ANSI sequences are never split.
func Truncate(s string, maxLen int) string {
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	return ansi.Truncate(s, maxLen+len(ellipsis), ellipsis)
}
