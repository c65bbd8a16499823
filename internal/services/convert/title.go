package convert

import (
	"strings"
	"time"
)

// SanitizeFirstLine builds a usable book title from rewritten text:
// the first line with Markdown heading and emphasis markers stripped,
// capped at 120 characters.
func SanitizeFirstLine(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "Untitled"
	}

	line := trimmed
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		line = trimmed[:i]
	}
	line = strings.Trim(line, "# -* \t")

	if runes := []rune(line); len(runes) > 120 {
		line = string(runes[:120])
	}
	if line == "" {
		return "Untitled"
	}
	return line
}

// fallbackTitle names books whose content carried no usable title.
func fallbackTitle(now time.Time) string {
	return "Clipboard_" + now.Format("20060102_150405")
}
