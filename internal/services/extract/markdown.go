package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// MarkdownExtractor parses Markdown into document blocks using the
// goldmark AST. The first level-1 heading becomes the document title.
type MarkdownExtractor struct {
	md     goldmark.Markdown
	logger arbor.ILogger
}

// NewMarkdownExtractor creates a new Markdown extractor with GFM
// extensions (tables, strikethrough) enabled.
func NewMarkdownExtractor(logger arbor.ILogger) *MarkdownExtractor {
	return &MarkdownExtractor{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger: logger,
	}
}

func (e *MarkdownExtractor) Kind() models.ContentKind {
	return models.KindMarkdown
}

func (e *MarkdownExtractor) Extract(_ context.Context, content models.CapturedContent) (*models.NormalizedDocument, error) {
	src := []byte(strings.TrimSpace(content.RawText))
	if len(src) == 0 {
		return nil, models.NewPipelineError(models.ErrKindExtractionFailed, models.ErrEmptyContent)
	}

	root := e.md.Parser().Parse(gtext.NewReader(src))

	doc := &models.NormalizedDocument{}
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		e.appendNode(doc, node, src)
	}

	if len(doc.Blocks) == 0 {
		return nil, models.NewPipelineError(models.ErrKindExtractionFailed, models.ErrEmptyContent)
	}

	e.logger.Debug().
		Int("blocks", len(doc.Blocks)).
		Str("title", doc.Title).
		Msg("Markdown extracted")

	return doc, nil
}

// appendNode converts one top-level AST node into zero or more blocks.
func (e *MarkdownExtractor) appendNode(doc *models.NormalizedDocument, node ast.Node, src []byte) {
	switch n := node.(type) {
	case *ast.Heading:
		text := nodeText(n, src)
		if doc.Title == "" && n.Level == 1 {
			doc.Title = text
		}
		doc.Blocks = append(doc.Blocks, models.Block{
			Kind:  models.BlockHeading,
			Level: n.Level,
			Text:  text,
		})

	case *ast.Paragraph:
		// A paragraph holding a single image becomes an image block.
		if img := soleImage(n); img != nil {
			doc.Blocks = append(doc.Blocks, models.Block{
				Kind: models.BlockImage,
				Ref: &models.ImageRef{
					URL: string(img.Destination),
					Alt: nodeText(img, src),
				},
			})
			return
		}
		if text := nodeText(n, src); text != "" {
			doc.Blocks = append(doc.Blocks, models.Block{
				Kind: models.BlockParagraph,
				Text: text,
			})
		}

	case *ast.FencedCodeBlock:
		doc.Blocks = append(doc.Blocks, models.Block{
			Kind: models.BlockCode,
			Text: codeLines(n, src),
		})

	case *ast.CodeBlock:
		doc.Blocks = append(doc.Blocks, models.Block{
			Kind: models.BlockCode,
			Text: codeLines(n, src),
		})

	case *ast.List:
		var items []string
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			if text := nodeText(item, src); text != "" {
				items = append(items, text)
			}
		}
		if len(items) > 0 {
			doc.Blocks = append(doc.Blocks, models.Block{
				Kind:  models.BlockList,
				Items: items,
			})
		}

	case *ast.Blockquote:
		if text := nodeText(n, src); text != "" {
			doc.Blocks = append(doc.Blocks, models.Block{
				Kind: models.BlockParagraph,
				Text: text,
			})
		}

	case *ast.ThematicBreak:
		// No content.

	case *extast.Table:
		// Tables degrade to a paragraph per row, pipe-joined.
		for row := n.FirstChild(); row != nil; row = row.NextSibling() {
			var cells []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, nodeText(cell, src))
			}
			if len(cells) > 0 {
				doc.Blocks = append(doc.Blocks, models.Block{
					Kind: models.BlockParagraph,
					Text: strings.Join(cells, " | "),
				})
			}
		}

	default:
		if text := nodeText(node, src); text != "" {
			doc.Blocks = append(doc.Blocks, models.Block{
				Kind: models.BlockParagraph,
				Text: text,
			})
		}
	}
}

// soleImage returns the paragraph's image when the image is its only
// meaningful inline content.
func soleImage(p *ast.Paragraph) *ast.Image {
	var img *ast.Image
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Image:
			if img != nil {
				return nil
			}
			img = n
		case *ast.Text:
			// Whitespace around the image is fine.
		default:
			return nil
		}
	}
	return img
}

// nodeText collects the plain text beneath a node in reading order.
func nodeText(node ast.Node, src []byte) string {
	var buf bytes.Buffer
	collectText(node, src, &buf)
	return strings.TrimSpace(collapseSpaces(buf.String()))
}

func collectText(node ast.Node, src []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}
	case *ast.String:
		buf.Write(n.Value)
	case *ast.AutoLink:
		buf.Write(n.URL(src))
	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			collectText(c, src, buf)
			if _, ok := c.(*ast.Paragraph); ok {
				buf.WriteByte(' ')
			}
		}
	}
}

// codeLines joins the raw source lines of a code block.
func codeLines(node ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
