package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/models"
)

func TestMarkdownExtractor(t *testing.T) {
	e := NewMarkdownExtractor(arbor.NewLogger())

	src := "# My Title\n\nFirst paragraph with *emphasis*.\n\n" +
		"## Section\n\n- one\n- two\n\n```\ncode block\n```\n\n" +
		"![diagram](https://example.com/d.png)\n"

	doc, err := e.Extract(context.Background(), models.CapturedContent{RawText: src})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if doc.Title != "My Title" {
		t.Errorf("title = %q, want My Title", doc.Title)
	}

	kinds := []models.BlockKind{}
	for _, b := range doc.Blocks {
		kinds = append(kinds, b.Kind)
	}
	expected := []models.BlockKind{
		models.BlockHeading,
		models.BlockParagraph,
		models.BlockHeading,
		models.BlockList,
		models.BlockCode,
		models.BlockImage,
	}
	if len(kinds) != len(expected) {
		t.Fatalf("got %d blocks (%v), want %d", len(kinds), kinds, len(expected))
	}
	for i := range expected {
		if kinds[i] != expected[i] {
			t.Errorf("block %d kind = %s, want %s", i, kinds[i], expected[i])
		}
	}

	if doc.Blocks[1].Text != "First paragraph with emphasis." {
		t.Errorf("paragraph text = %q", doc.Blocks[1].Text)
	}
	if doc.Blocks[3].Items[1] != "two" {
		t.Errorf("list items = %v", doc.Blocks[3].Items)
	}
	if doc.Blocks[4].Text != "code block" {
		t.Errorf("code text = %q", doc.Blocks[4].Text)
	}
	if doc.Blocks[5].Ref == nil || doc.Blocks[5].Ref.URL != "https://example.com/d.png" {
		t.Errorf("image ref = %+v", doc.Blocks[5].Ref)
	}
}

func TestMarkdownExtractorEmptyInput(t *testing.T) {
	e := NewMarkdownExtractor(arbor.NewLogger())

	_, err := e.Extract(context.Background(), models.CapturedContent{RawText: "   \n  "})
	if !errors.Is(err, models.ErrEmptyContent) {
		t.Errorf("expected ErrEmptyContent, got %v", err)
	}
	if models.KindOf(err) != models.ErrKindExtractionFailed {
		t.Errorf("expected extraction_failed kind, got %s", models.KindOf(err))
	}
}

func TestHTMLExtractor(t *testing.T) {
	e := NewHTMLExtractor(arbor.NewLogger())

	src := `<html><head><title>Page Title</title><style>p{color:red}</style></head>
<body>
<h1>Heading</h1>
<p>A paragraph with <b>bold</b> text.</p>
<ul><li>alpha</li><li>beta</li></ul>
<pre>left  aligned</pre>
<p><img src="https://example.com/pic.jpg" alt="pic"/></p>
<script>alert("nope")</script>
</body></html>`

	doc, err := e.Extract(context.Background(), models.CapturedContent{RawHTML: src})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if doc.Title != "Page Title" {
		t.Errorf("title = %q", doc.Title)
	}

	var sawScript bool
	var imageRef *models.ImageRef
	for _, b := range doc.Blocks {
		if b.Kind == models.BlockImage {
			imageRef = b.Ref
		}
		if b.Text == `alert("nope")` {
			sawScript = true
		}
	}
	if sawScript {
		t.Error("script content leaked into blocks")
	}
	if imageRef == nil || imageRef.URL != "https://example.com/pic.jpg" {
		t.Errorf("image ref = %+v", imageRef)
	}

	if doc.Blocks[0].Kind != models.BlockHeading || doc.Blocks[0].Level != 1 {
		t.Errorf("first block = %+v", doc.Blocks[0])
	}
	if doc.Blocks[1].Text != "A paragraph with bold text." {
		t.Errorf("paragraph = %q", doc.Blocks[1].Text)
	}
	if doc.Blocks[2].Kind != models.BlockList || len(doc.Blocks[2].Items) != 2 {
		t.Errorf("list block = %+v", doc.Blocks[2])
	}
	if doc.Blocks[3].Kind != models.BlockCode || doc.Blocks[3].Text != "left  aligned" {
		t.Errorf("code block = %+v", doc.Blocks[3])
	}
}

func TestHTMLExtractorFragmentWithoutBlocks(t *testing.T) {
	e := NewHTMLExtractor(arbor.NewLogger())

	doc, err := e.Extract(context.Background(), models.CapturedContent{
		RawHTML: "<span>just some inline text</span>",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(doc.Blocks) != 1 || doc.Blocks[0].Text != "just some inline text" {
		t.Errorf("blocks = %+v", doc.Blocks)
	}
}

func TestRTFExtractor(t *testing.T) {
	e := NewRTFExtractor(arbor.NewLogger())

	src := `{\rtf1\ansi{\fonttbl{\f0 Helvetica;}}\f0\fs24 Hello World.\par\par Second paragraph.}`

	doc, err := e.Extract(context.Background(), models.CapturedContent{RawText: src})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks: %+v", len(doc.Blocks), doc.Blocks)
	}
	if doc.Blocks[0].Text != "Hello World." {
		t.Errorf("first paragraph = %q", doc.Blocks[0].Text)
	}
	if doc.Blocks[1].Text != "Second paragraph." {
		t.Errorf("second paragraph = %q", doc.Blocks[1].Text)
	}
}

func TestStripRTFEscapes(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{`{\rtf1 caf\'e9}`, "café"},
		{`{\rtf1 a\tab b}`, "a b"},
		{`{\rtf1 brace \{ and \} here}`, "brace { and } here"},
	}
	for _, tt := range tests {
		if got := StripRTF(tt.in); got != tt.expected {
			t.Errorf("StripRTF(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestStripRTFUnicodeEscapes(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		// The fallback character after each escape is not visible text.
		{`{\rtf1 舠?Hello舡? world\par}`, "“Hello” world\n"},
		// Code points above 32767 arrive as negatives, surrogate pairs
		// combine into one rune.
		{`{\rtf1\uc1 \u-10179?\u-8704? ok}`, "\U0001f600 ok"},
		// \uc0 disables fallback skipping.
		{`{\rtf1\uc0\u955 lambda}`, "λlambda"},
		// A hex escape counts as a single fallback character.
		{`{\rtf1 荤\'80 euro}`, "€ euro"},
	}
	for _, tt := range tests {
		if got := StripRTF(tt.in); got != tt.expected {
			t.Errorf("StripRTF(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestPlainTextExtractor(t *testing.T) {
	e := NewPlainTextExtractor(arbor.NewLogger())

	src := "First paragraph\nstill first.\r\n\r\nSecond paragraph.\n\n\n\nThird."
	doc, err := e.Extract(context.Background(), models.CapturedContent{RawText: src})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(doc.Blocks) != 3 {
		t.Fatalf("got %d blocks: %+v", len(doc.Blocks), doc.Blocks)
	}
	if doc.Blocks[0].Text != "First paragraph\nstill first." {
		t.Errorf("first paragraph = %q", doc.Blocks[0].Text)
	}
}

func TestRegistryFallsBackToPlainText(t *testing.T) {
	r := NewRegistry(0, nil, arbor.NewLogger())

	doc, err := r.Extract(context.Background(), models.ContentKind("unknown"),
		models.CapturedContent{RawText: "some text"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(doc.Blocks) != 1 {
		t.Errorf("blocks = %+v", doc.Blocks)
	}
}
