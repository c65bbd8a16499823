package extract

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// blockSelector matches the elements that map directly onto document
// blocks. Matched elements nested inside another match are skipped so
// each piece of text is emitted exactly once.
const blockSelector = "h1, h2, h3, h4, h5, h6, p, ul, ol, pre, blockquote, img"

// HTMLExtractor converts an HTML fragment or page into document
// blocks, walking matched elements in document order.
type HTMLExtractor struct {
	logger arbor.ILogger
}

func NewHTMLExtractor(logger arbor.ILogger) *HTMLExtractor {
	return &HTMLExtractor{logger: logger}
}

func (e *HTMLExtractor) Kind() models.ContentKind {
	return models.KindHTML
}

func (e *HTMLExtractor) Extract(_ context.Context, content models.CapturedContent) (*models.NormalizedDocument, error) {
	raw := content.RawHTML
	if raw == "" {
		raw = content.RawText
	}
	if strings.TrimSpace(raw) == "" {
		return nil, models.NewPipelineError(models.ErrKindExtractionFailed, models.ErrEmptyContent)
	}

	sel, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, models.NewPipelineError(models.ErrKindExtractionFailed, err)
	}

	sel.Find("script, style, meta, link, noscript, iframe").Remove()

	doc := &models.NormalizedDocument{
		Title: strings.TrimSpace(sel.Find("title").First().Text()),
	}

	sel.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if nestedInBlock(s) {
			return
		}
		e.appendSelection(doc, s)
	})

	// Fragments without any recognized elements still carry text.
	if len(doc.Blocks) == 0 {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return nil, models.NewPipelineError(models.ErrKindExtractionFailed, models.ErrEmptyContent)
		}
		for _, b := range SegmentParagraphs(text) {
			doc.Blocks = append(doc.Blocks, b)
		}
	}

	if doc.Title == "" {
		for _, b := range doc.Blocks {
			if b.Kind == models.BlockHeading && b.Level == 1 {
				doc.Title = b.Text
				break
			}
		}
	}

	e.logger.Debug().
		Int("blocks", len(doc.Blocks)).
		Str("title", doc.Title).
		Msg("HTML extracted")

	return doc, nil
}

func (e *HTMLExtractor) appendSelection(doc *models.NormalizedDocument, s *goquery.Selection) {
	tag := goquery.NodeName(s)
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(tag[1:])
		text := cleanText(s.Text())
		if text == "" {
			return
		}
		doc.Blocks = append(doc.Blocks, models.Block{
			Kind:  models.BlockHeading,
			Level: level,
			Text:  text,
		})

	case "p", "blockquote":
		// Image-bearing paragraphs contribute their images as well.
		s.Find("img").Each(func(_ int, img *goquery.Selection) {
			e.appendImage(doc, img)
		})
		text := cleanText(s.Text())
		if text == "" {
			return
		}
		doc.Blocks = append(doc.Blocks, models.Block{
			Kind: models.BlockParagraph,
			Text: text,
		})

	case "ul", "ol":
		var items []string
		s.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := cleanText(li.Text()); text != "" {
				items = append(items, text)
			}
		})
		if len(items) > 0 {
			doc.Blocks = append(doc.Blocks, models.Block{
				Kind:  models.BlockList,
				Items: items,
			})
		}

	case "pre":
		text := strings.TrimRight(s.Text(), "\n")
		if strings.TrimSpace(text) == "" {
			return
		}
		doc.Blocks = append(doc.Blocks, models.Block{
			Kind: models.BlockCode,
			Text: text,
		})

	case "img":
		e.appendImage(doc, s)
	}
}

func (e *HTMLExtractor) appendImage(doc *models.NormalizedDocument, img *goquery.Selection) {
	src, ok := img.Attr("src")
	src = strings.TrimSpace(src)
	if !ok || src == "" {
		return
	}
	alt, _ := img.Attr("alt")
	doc.Blocks = append(doc.Blocks, models.Block{
		Kind: models.BlockImage,
		Ref: &models.ImageRef{
			URL: src,
			Alt: strings.TrimSpace(alt),
		},
	})
}

// nestedInBlock reports whether the selection sits inside another
// element already matched by blockSelector.
func nestedInBlock(s *goquery.Selection) bool {
	return s.ParentsFiltered(blockSelector).Length() > 0
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
