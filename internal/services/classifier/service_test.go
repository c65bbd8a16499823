package classifier

import (
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/models"
)

func TestClassify(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	tests := []struct {
		name     string
		content  models.CapturedContent
		expected models.ContentKind
	}{
		{
			name:     "youtube watch URL",
			content:  models.CapturedContent{RawText: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
			expected: models.KindYouTubeURL,
		},
		{
			name:     "youtu.be short URL",
			content:  models.CapturedContent{RawText: "https://youtu.be/dQw4w9WgXcQ"},
			expected: models.KindYouTubeURL,
		},
		{
			name:     "mobile youtube URL",
			content:  models.CapturedContent{RawText: "https://m.youtube.com/watch?v=abc123"},
			expected: models.KindYouTubeURL,
		},
		{
			name:     "bare article URL",
			content:  models.CapturedContent{RawText: "https://example.com/some-article"},
			expected: models.KindURLArticle,
		},
		{
			name:     "URL with surrounding prose is not a URL capture",
			content:  models.CapturedContent{RawText: "check out https://example.com today"},
			expected: models.KindPlainText,
		},
		{
			name:     "URL followed by more lines is not a URL capture",
			content:  models.CapturedContent{RawText: "https://example.com/article\nsome notes below"},
			expected: models.KindPlainText,
		},
		{
			name:     "raw html payload",
			content:  models.CapturedContent{RawHTML: "<html><body><p>hello</p></body></html>"},
			expected: models.KindHTML,
		},
		{
			name:     "html in plain text",
			content:  models.CapturedContent{RawText: "<div><p>one</p><p>two</p></div>"},
			expected: models.KindHTML,
		},
		{
			name:     "rtf payload",
			content:  models.CapturedContent{RawText: `{\rtf1\ansi Hello}`},
			expected: models.KindRTF,
		},
		{
			name:     "markdown with header and list",
			content:  models.CapturedContent{RawText: "# Title\n\n- one\n- two\n"},
			expected: models.KindMarkdown,
		},
		{
			name:     "markdown with fenced code and link",
			content:  models.CapturedContent{RawText: "see [docs](https://example.com)\n\n```\ncode\n```\n"},
			expected: models.KindMarkdown,
		},
		{
			name:     "single markdown marker stays plain text",
			content:  models.CapturedContent{RawText: "prices rose *sharply* last week"},
			expected: models.KindPlainText,
		},
		{
			name:     "plain prose",
			content:  models.CapturedContent{RawText: "Just a couple of sentences.\nNothing special here."},
			expected: models.KindPlainText,
		},
		{
			name:     "empty capture falls back to plain text",
			content:  models.CapturedContent{},
			expected: models.KindPlainText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.Classify(tt.content); got != tt.expected {
				t.Errorf("Classify() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	// Classification must assign a known kind to anything thrown at it.
	inputs := []models.CapturedContent{
		{},
		{RawText: strings.Repeat("x", 100000)},
		{RawText: "\x00\x01\x02"},
		{RawHTML: "<"},
		{RawText: "http://"},
		{RawText: "{\\rtf"},
	}

	known := map[models.ContentKind]bool{
		models.KindMarkdown:   true,
		models.KindHTML:       true,
		models.KindRTF:        true,
		models.KindPlainText:  true,
		models.KindURLArticle: true,
		models.KindYouTubeURL: true,
	}

	for _, in := range inputs {
		if kind := svc.Classify(in); !known[kind] {
			t.Errorf("Classify() produced unknown kind %q", kind)
		}
	}
}

func TestIsYouTubeURL(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://www.youtube.com/watch?v=abc", true},
		{"https://youtube.com/watch?v=abc", true},
		{"https://youtu.be/abc", true},
		{"https://vimeo.com/12345", false},
		{"https://notyoutube.com/watch?v=abc", false},
		{"youtube.com/watch?v=abc", false}, // no scheme
		{"", false},
	}

	for _, tt := range tests {
		if got := IsYouTubeURL(tt.url); got != tt.expected {
			t.Errorf("IsYouTubeURL(%q) = %v, want %v", tt.url, got, tt.expected)
		}
	}
}
