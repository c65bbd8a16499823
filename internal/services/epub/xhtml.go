package epub

import (
	"fmt"
	"html"
	"strings"

	"github.com/moisescabello/cliptoepub/internal/models"
)

const xhtmlHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>%s</title>
  <link rel="stylesheet" type="text/css" href="styles.css"/>
</head>
<body>
`

// renderChapter produces the XHTML body for one chapter.
func renderChapter(ch models.Chapter) string {
	var b strings.Builder
	fmt.Fprintf(&b, xhtmlHeader, html.EscapeString(ch.Title))

	for _, block := range ch.Blocks {
		renderBlock(&b, block)
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func renderBlock(b *strings.Builder, block models.Block) {
	switch block.Kind {
	case models.BlockHeading:
		level := block.Level
		if level < 1 || level > 6 {
			level = 2
		}
		fmt.Fprintf(b, "  <h%d>%s</h%d>\n", level, html.EscapeString(block.Text), level)

	case models.BlockParagraph:
		fmt.Fprintf(b, "  <p>%s</p>\n", paragraphHTML(block.Text))

	case models.BlockList:
		b.WriteString("  <ul>\n")
		for _, item := range block.Items {
			fmt.Fprintf(b, "    <li>%s</li>\n", html.EscapeString(item))
		}
		b.WriteString("  </ul>\n")

	case models.BlockCode:
		fmt.Fprintf(b, "  <pre><code>%s</code></pre>\n", html.EscapeString(block.Text))

	case models.BlockImage:
		if block.AssetName == "" {
			return
		}
		alt := block.Text
		fmt.Fprintf(b, "  <p class=\"image\"><img src=\"images/%s\" alt=\"%s\"/></p>\n",
			block.AssetName, html.EscapeString(alt))
	}
}

// paragraphHTML escapes paragraph text, preserving intentional single
// line breaks as <br/>.
func paragraphHTML(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = html.EscapeString(strings.TrimSpace(line))
	}
	return strings.Join(lines, "<br/>")
}

// renderNav produces the EPUB 3 navigation document.
func renderNav(artifact *models.BookArtifact) string {
	var b strings.Builder
	fmt.Fprintf(&b, xhtmlHeader, html.EscapeString(artifact.Metadata.Title))

	b.WriteString("  <nav epub:type=\"toc\" id=\"toc\">\n")
	fmt.Fprintf(&b, "    <h1>%s</h1>\n", html.EscapeString(artifact.Metadata.Title))
	b.WriteString("    <ol>\n")
	for i, ch := range artifact.Chapters {
		fmt.Fprintf(&b, "      <li><a href=\"chapter_%03d.xhtml\">%s</a></li>\n",
			i+1, html.EscapeString(ch.Title))
	}
	b.WriteString("    </ol>\n  </nav>\n</body>\n</html>\n")
	return b.String()
}
