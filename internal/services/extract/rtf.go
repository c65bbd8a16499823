package extract

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// RTFExtractor strips RTF control words and groups down to plain
// text, then segments the result into paragraphs.
type RTFExtractor struct {
	logger arbor.ILogger
}

func NewRTFExtractor(logger arbor.ILogger) *RTFExtractor {
	return &RTFExtractor{logger: logger}
}

func (e *RTFExtractor) Kind() models.ContentKind {
	return models.KindRTF
}

func (e *RTFExtractor) Extract(_ context.Context, content models.CapturedContent) (*models.NormalizedDocument, error) {
	text := StripRTF(content.RawText)
	if strings.TrimSpace(text) == "" {
		return nil, models.NewPipelineError(models.ErrKindExtractionFailed, models.ErrEmptyContent)
	}

	doc := &models.NormalizedDocument{
		Blocks: SegmentParagraphs(text),
	}

	e.logger.Debug().
		Int("blocks", len(doc.Blocks)).
		Msg("RTF extracted")

	return doc, nil
}

// destination groups carry no visible text and are dropped whole.
var rtfDestinations = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"pict":       true,
	"header":     true,
	"footer":     true,
}

// StripRTF removes RTF control structure and returns the visible
// text. Paragraph breaks become newlines.
func StripRTF(src string) string {
	var out strings.Builder
	skipDepth := 0
	depth := 0
	fallbackLen := 1
	var pendingHigh rune

	for i := 0; i < len(src); {
		c := src[i]
		switch c {
		case '{':
			depth++
			i++
		case '}':
			if skipDepth > 0 && depth == skipDepth {
				skipDepth = 0
			}
			depth--
			i++
		case '\\':
			word, param, next := readControl(src, i+1)
			i = next
			if skipDepth > 0 {
				continue
			}
			switch word {
			case "par", "line":
				out.WriteString("\n")
			case "tab":
				out.WriteString(" ")
			case "'":
				// Hex escapes are Latin-1 code points in practice.
				if b, err := strconv.ParseUint(param, 16, 8); err == nil {
					out.WriteRune(rune(b))
				}
			case "uc":
				if n, err := strconv.Atoi(param); err == nil && n >= 0 {
					fallbackLen = n
				}
			case "u":
				if r, err := strconv.Atoi(param); err == nil {
					// Values above 32767 are encoded as negatives.
					if r < 0 {
						r += 65536
					}
					cp := rune(r)
					switch {
					case utf16.IsSurrogate(cp) && cp < 0xDC00:
						pendingHigh = cp
					case utf16.IsSurrogate(cp):
						if pendingHigh != 0 {
							out.WriteRune(utf16.DecodeRune(pendingHigh, cp))
							pendingHigh = 0
						}
					default:
						out.WriteRune(cp)
					}
				}
				// Skip the fallback characters writers emit after the
				// escape for non-Unicode readers.
				for n := fallbackLen; n > 0 && i < len(src); n-- {
					if src[i] == '{' || src[i] == '}' {
						break
					}
					if src[i] == '\\' {
						_, _, i = readControl(src, i+1)
						continue
					}
					i++
				}
			case "*":
				skipDepth = depth
			case "{", "}", "\\":
				out.WriteString(word)
			default:
				if rtfDestinations[word] {
					skipDepth = depth
				}
			}
		case '\r', '\n':
			i++
		default:
			if skipDepth == 0 {
				out.WriteByte(c)
			}
			i++
		}
	}

	return out.String()
}

// readControl parses a control word or symbol starting at src[i] and
// returns the word, its parameter, and the index after it.
func readControl(src string, i int) (word, param string, next int) {
	if i >= len(src) {
		return "", "", i
	}

	c := src[i]
	switch {
	case c == '\'':
		// Hex escape, two digits follow.
		end := i + 3
		if end > len(src) {
			end = len(src)
		}
		return "'", src[i+1 : end], end

	case c == '{' || c == '}' || c == '\\' || c == '*':
		return string(c), "", i + 1

	case isRTFLetter(c):
		start := i
		for i < len(src) && isRTFLetter(src[i]) {
			i++
		}
		word = src[start:i]

		pStart := i
		if i < len(src) && src[i] == '-' {
			i++
		}
		for i < len(src) && src[i] >= '0' && src[i] <= '9' {
			i++
		}
		param = src[pStart:i]

		// A single space terminates the control word.
		if i < len(src) && src[i] == ' ' {
			i++
		}
		return word, param, i

	default:
		return "", "", i + 1
	}
}

func isRTFLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
