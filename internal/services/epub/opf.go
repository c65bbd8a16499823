package epub

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// OPF and NCX document structures. Dublin Core elements carry their
// prefix in the tag name; encoding/xml emits them literally.

type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Xmlns    string      `xml:"xmlns,attr"`
	Version  string      `xml:"version,attr"`
	UniqueID string      `xml:"unique-identifier,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	XmlnsDC    string        `xml:"xmlns:dc,attr"`
	Identifier opfIdentifier `xml:"dc:identifier"`
	Title      string        `xml:"dc:title"`
	Language   string        `xml:"dc:language"`
	Creator    string        `xml:"dc:creator,omitempty"`
	Source     string        `xml:"dc:source,omitempty"`
	Metas      []opfMeta     `xml:"meta"`
}

type opfIdentifier struct {
	ID    string `xml:"id,attr"`
	Value string `xml:",chardata"`
}

type opfMeta struct {
	Property string `xml:"property,attr"`
	Value    string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

type opfSpine struct {
	Toc      string       `xml:"toc,attr"`
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// buildOPF assembles the package document for the book.
func buildOPF(bookID string, artifact *models.BookArtifact, now time.Time) ([]byte, error) {
	meta := artifact.Metadata

	pkg := opfPackage{
		Xmlns:    "http://www.idpf.org/2007/opf",
		Version:  "3.0",
		UniqueID: "book-id",
		Metadata: opfMetadata{
			XmlnsDC:    "http://purl.org/dc/elements/1.1/",
			Identifier: opfIdentifier{ID: "book-id", Value: bookID},
			Title:      meta.Title,
			Language:   meta.Language,
			Creator:    meta.Author,
			Source:     meta.Source,
			Metas: []opfMeta{
				{Property: "dcterms:modified", Value: now.UTC().Format("2006-01-02T15:04:05Z")},
			},
		},
		Spine: opfSpine{Toc: "ncx"},
	}

	pkg.Manifest.Items = append(pkg.Manifest.Items,
		opfItem{ID: "nav", Href: "nav.xhtml", MediaType: "application/xhtml+xml", Properties: "nav"},
		opfItem{ID: "ncx", Href: "toc.ncx", MediaType: "application/x-dtbncx+xml"},
		opfItem{ID: "css", Href: "styles.css", MediaType: "text/css"},
	)

	for i := range artifact.Chapters {
		id := fmt.Sprintf("chapter_%03d", i+1)
		pkg.Manifest.Items = append(pkg.Manifest.Items, opfItem{
			ID:        id,
			Href:      id + ".xhtml",
			MediaType: "application/xhtml+xml",
		})
		pkg.Spine.ItemRefs = append(pkg.Spine.ItemRefs, opfItemRef{IDRef: id})
	}

	for i, img := range artifact.Images {
		pkg.Manifest.Items = append(pkg.Manifest.Items, opfItem{
			ID:        fmt.Sprintf("img_%03d", i+1),
			Href:      "images/" + img.Name,
			MediaType: img.MediaType,
		})
	}

	out, err := xml.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

type ncxDocument struct {
	XMLName xml.Name     `xml:"ncx"`
	Xmlns   string       `xml:"xmlns,attr"`
	Version string       `xml:"version,attr"`
	Head    ncxHead      `xml:"head"`
	Title   ncxTitleText `xml:"docTitle"`
	NavMap  ncxNavMap    `xml:"navMap"`
}

type ncxHead struct {
	Metas []ncxMeta `xml:"meta"`
}

type ncxMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type ncxTitleText struct {
	Text string `xml:"text"`
}

type ncxNavMap struct {
	Points []ncxNavPoint `xml:"navPoint"`
}

type ncxNavPoint struct {
	ID        string       `xml:"id,attr"`
	PlayOrder int          `xml:"playOrder,attr"`
	Label     ncxTitleText `xml:"navLabel"`
	Content   ncxContent   `xml:"content"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// buildNCX assembles the legacy navigation document kept for older
// readers.
func buildNCX(bookID string, artifact *models.BookArtifact) ([]byte, error) {
	doc := ncxDocument{
		Xmlns:   "http://www.daisy.org/z3986/2005/ncx/",
		Version: "2005-1",
		Head: ncxHead{Metas: []ncxMeta{
			{Name: "dtb:uid", Content: bookID},
			{Name: "dtb:depth", Content: "1"},
		}},
		Title: ncxTitleText{Text: artifact.Metadata.Title},
	}

	for i, ch := range artifact.Chapters {
		doc.NavMap.Points = append(doc.NavMap.Points, ncxNavPoint{
			ID:        fmt.Sprintf("navpoint-%d", i+1),
			PlayOrder: i + 1,
			Label:     ncxTitleText{Text: ch.Title},
			Content:   ncxContent{Src: fmt.Sprintf("chapter_%03d.xhtml", i+1)},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
