package subtitles

import (
	"regexp"
	"strings"
)

var (
	vttTimestampPattern = regexp.MustCompile(`^\s*\d{2}:\d{2}(:\d{2})?[.,]\d{3}\s+-->\s+`)
	srtIndexPattern     = regexp.MustCompile(`^\s*\d+\s*$`)
	inlineTagPattern    = regexp.MustCompile(`<[^>]*>`)
	annotationPattern   = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
)

// ParseVTT extracts the spoken text from a WebVTT file, dropping the
// header, timestamps, cue settings, and inline styling tags. Repeated
// consecutive lines, common in auto-generated rolling captions, are
// collapsed.
func ParseVTT(data string) string {
	var lines []string
	inHeader := true

	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if inHeader {
			// The header ends at the first blank line after WEBVTT.
			if trimmed == "" {
				inHeader = false
			}
			continue
		}
		if trimmed == "" || vttTimestampPattern.MatchString(line) {
			continue
		}
		if strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") {
			continue
		}

		if text := cleanCueLine(trimmed); text != "" {
			lines = append(lines, text)
		}
	}

	return joinDeduped(lines)
}

// ParseSRT extracts the spoken text from a SubRip file, dropping cue
// indices and timestamps.
func ParseSRT(data string) string {
	var lines []string

	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || srtIndexPattern.MatchString(line) || vttTimestampPattern.MatchString(line) {
			continue
		}

		if text := cleanCueLine(trimmed); text != "" {
			lines = append(lines, text)
		}
	}

	return joinDeduped(lines)
}

// cleanCueLine removes styling tags and bracketed annotations such as
// [Music] or (applause) from a cue line.
func cleanCueLine(line string) string {
	line = inlineTagPattern.ReplaceAllString(line, "")
	line = annotationPattern.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

func joinDeduped(lines []string) string {
	var out []string
	prev := ""
	for _, line := range lines {
		if line == prev {
			continue
		}
		out = append(out, line)
		prev = line
	}
	return strings.Join(out, "\n")
}
