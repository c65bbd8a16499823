package extract

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// PlainTextExtractor segments plain text into paragraph blocks on blank
// lines, preserving single line breaks inside a paragraph.
type PlainTextExtractor struct {
	logger arbor.ILogger
}

// NewPlainTextExtractor creates a new plain-text extractor.
func NewPlainTextExtractor(logger arbor.ILogger) *PlainTextExtractor {
	return &PlainTextExtractor{logger: logger}
}

func (e *PlainTextExtractor) Kind() models.ContentKind {
	return models.KindPlainText
}

func (e *PlainTextExtractor) Extract(_ context.Context, content models.CapturedContent) (*models.NormalizedDocument, error) {
	text := strings.TrimSpace(content.RawText)
	if text == "" {
		return nil, models.NewPipelineError(models.ErrKindExtractionFailed, models.ErrEmptyContent)
	}

	doc := &models.NormalizedDocument{
		Blocks: SegmentParagraphs(text),
	}

	e.logger.Debug().
		Int("blocks", len(doc.Blocks)).
		Msg("Plain text extracted")

	return doc, nil
}

// SegmentParagraphs splits text into paragraph blocks on blank lines.
// Shared by the plain-text and RTF extractors and the subtitle flow.
func SegmentParagraphs(text string) []models.Block {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	var blocks []models.Block
	for _, para := range strings.Split(normalized, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		blocks = append(blocks, models.Block{
			Kind: models.BlockParagraph,
			Text: para,
		})
	}
	return blocks
}
