// Package telnet serves the chat front end over Telnet with ANSI styling.
package telnet

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ANSI SGR sequences.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
)

// Colorize wraps text in color and a trailing Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf formats and then colorizes.
func Colorf(color, format string, args ...any) string {
	return Colorize(color, fmt.Sprintf(format, args...))
}

var sgrPattern = regexp.MustCompile("\033\\[[0-9;]*m")

// StripANSI removes SGR escape sequences.
//
// Postcondition: len(result) <= len(s).
func StripANSI(s string) string {
	return sgrPattern.ReplaceAllString(s, "")
}

// VisibleWidth is the number of runes left after stripping escapes.
func VisibleWidth(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

// PadRight pads s with spaces to width visible runes. Longer strings are
// returned unchanged.
func PadRight(s string, width int) string {
	if n := VisibleWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// Columns lays out left and right side by side, padding the left column to
// the widest left entry plus gap.
//
// Postcondition: len(result) == max(len(left), len(right)).
func Columns(left, right []string, gap int) []string {
	width := 0
	for _, l := range left {
		width = max(width, VisibleWidth(l))
	}
	n := max(len(left), len(right))
	out := make([]string, n)
	for i := range n {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		if r == "" {
			out[i] = strings.TrimRight(l, " ")
			continue
		}
		out[i] = PadRight(l, width+gap) + r
	}
	return out
}
