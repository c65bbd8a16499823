// Package classifier assigns a content kind to captured payloads.
// Classification is total: every capture gets exactly one kind, with
// plain_text as the fallback.
package classifier

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// Service implements content kind detection. Decision order, first match
// wins: youtube URL, bare URL, HTML (or RTF when control words are
// present), Markdown heuristics, plain text. URL-only payloads are
// unambiguous and cheapest, so they are checked first.
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new classifier service.
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

var (
	htmlStructuralPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<html[^>]*>`),
		regexp.MustCompile(`(?i)<body[^>]*>`),
		regexp.MustCompile(`(?i)<div[^>]*>`),
		regexp.MustCompile(`(?i)<p[^>]*>`),
		regexp.MustCompile(`(?i)<span[^>]*>`),
		regexp.MustCompile(`(?i)<h[1-6][^>]*>`),
	}
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

	markdownPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^#{1,6}\s+`),            // headers
		regexp.MustCompile(`\*\*[^*]+\*\*`),             // bold
		regexp.MustCompile(`__[^_]+__`),                 // bold alternative
		regexp.MustCompile(`\*[^*]+\*`),                 // italic
		regexp.MustCompile(`(?m)^\s*[-*+]\s+`),          // unordered lists
		regexp.MustCompile(`(?m)^\s*\d+\.\s+`),          // ordered lists
		regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`),       // links
		regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`),      // images
		regexp.MustCompile("(?m)^```"),                  // fenced code
		regexp.MustCompile("`[^`]+`"),                   // inline code
		regexp.MustCompile(`(?m)^>\s+`),                 // blockquotes
	}
)

// Classify assigns exactly one content kind to the capture. Never fails.
func (s *Service) Classify(content models.CapturedContent) models.ContentKind {
	text := strings.TrimSpace(content.RawText)

	if IsYouTubeURL(text) {
		return models.KindYouTubeURL
	}
	if isBareURL(text) {
		return models.KindURLArticle
	}

	if html := strings.TrimSpace(content.RawHTML); html != "" && looksLikeHTML(html) {
		return models.KindHTML
	}

	if strings.HasPrefix(text, `{\rtf`) {
		return models.KindRTF
	}
	if looksLikeHTML(text) {
		return models.KindHTML
	}
	if looksLikeMarkdown(text) {
		return models.KindMarkdown
	}

	return models.KindPlainText
}

// IsYouTubeURL reports whether text is a single well-formed URL on a
// video-hosting domain. Exported so the pipeline can route the video flow
// without re-running classification.
func IsYouTubeURL(text string) bool {
	if !isBareURL(text) {
		return false
	}
	u, err := url.Parse(text)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "youtube.com" || host == "www.youtube.com" ||
		host == "m.youtube.com" || host == "youtu.be"
}

// isBareURL checks for a single-line http(s) URL with nothing else.
func isBareURL(text string) bool {
	if text == "" || strings.ContainsAny(text, "\n ") {
		return false
	}
	u, err := url.Parse(text)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// looksLikeHTML matches structural tags, or a significant number of
// HTML-like tags overall.
func looksLikeHTML(text string) bool {
	for _, p := range htmlStructuralPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return len(htmlTagPattern.FindAllString(text, 3)) >= 3
}

// looksLikeMarkdown requires at least two distinct Markdown syntax
// patterns to avoid misclassifying prose with a stray asterisk.
func looksLikeMarkdown(text string) bool {
	score := 0
	for _, p := range markdownPatterns {
		if p.MatchString(text) {
			score++
			if score >= 2 {
				return true
			}
		}
	}
	return false
}

// Ensure Service implements the Classifier interface
var _ interfaces.Classifier = (*Service)(nil)
