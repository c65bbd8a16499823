package models

// Chapter is an ordered slice of a NormalizedDocument produced by the
// splitter. Concatenating all chapters' blocks in index order
// reconstructs the source document exactly.
type Chapter struct {
	Index     int     `json:"index"`
	Title     string  `json:"title"`
	Blocks    []Block `json:"blocks"`
	WordCount int     `json:"word_count"`
}

// BookMetadata carries the Dublin Core fields written into the package.
type BookMetadata struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Language string `json:"language"`
	Source   string `json:"source,omitempty"`
}

// BookArtifact is the fully assembled book handed to the packager. Built
// once per conversion, written once, then immutable.
type BookArtifact struct {
	Metadata  BookMetadata `json:"metadata"`
	Chapters  []Chapter    `json:"chapters"`
	Images    []ImageAsset `json:"images,omitempty"`
	StyleName string       `json:"style_name"`
}

// TOC derives the table of contents from chapter titles in index order.
func (a *BookArtifact) TOC() []string {
	titles := make([]string, len(a.Chapters))
	for i, ch := range a.Chapters {
		titles[i] = ch.Title
	}
	return titles
}
