package models

import "strings"

// BlockKind discriminates the Block variants.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockList      BlockKind = "list"
	BlockImage     BlockKind = "image"
	BlockCode      BlockKind = "code"
)

// Block is one unit of document content. Which fields are meaningful
// depends on Kind: heading uses Level+Text, paragraph and code use Text,
// list uses Items, image uses AssetName. Ref is only populated between
// extraction and image resolution; the resolver replaces it with a named
// asset or drops the block.
type Block struct {
	Kind      BlockKind `json:"kind"`
	Level     int       `json:"level,omitempty"`
	Text      string    `json:"text,omitempty"`
	Items     []string  `json:"items,omitempty"`
	AssetName string    `json:"asset_name,omitempty"`
	Ref       *ImageRef `json:"-"`
}

// WordCount returns the number of whitespace-separated words in the block.
// Image blocks count as zero.
func (b Block) WordCount() int {
	switch b.Kind {
	case BlockImage:
		return 0
	case BlockList:
		n := 0
		for _, item := range b.Items {
			n += len(strings.Fields(item))
		}
		return n
	default:
		return len(strings.Fields(b.Text))
	}
}

// ImageAsset is a resolved, embeddable image. Name is the collision-free
// file name inside the package (index-based to preserve encounter order).
type ImageAsset struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"-"`
}

// NormalizedDocument is the uniform document model every extractor
// produces. Block order matches the original reading order, and no block
// references an image that is not present in Images.
type NormalizedDocument struct {
	Title  string       `json:"title"`
	Blocks []Block      `json:"blocks"`
	Images []ImageAsset `json:"images,omitempty"`
}

// WordCount returns the total word count across all blocks.
func (d *NormalizedDocument) WordCount() int {
	n := 0
	for _, b := range d.Blocks {
		n += b.WordCount()
	}
	return n
}

// HasImage reports whether the document carries an asset with the given name.
func (d *NormalizedDocument) HasImage(name string) bool {
	for _, img := range d.Images {
		if img.Name == name {
			return true
		}
	}
	return false
}
