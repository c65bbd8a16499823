package models

// ContentKind identifies the detected format of a captured payload.
type ContentKind string

const (
	KindMarkdown   ContentKind = "markdown"
	KindHTML       ContentKind = "html"
	KindRTF        ContentKind = "rtf"
	KindPlainText  ContentKind = "plain_text"
	KindURLArticle ContentKind = "url_article"
	KindYouTubeURL ContentKind = "youtube_url"
)

// SourceHint records where a capture came from. It is advisory only;
// classification works from the payload itself.
type SourceHint string

const (
	SourceClipboard SourceHint = "clipboard"
	SourceURL       SourceHint = "url"
	SourceVideo     SourceHint = "video"
)

// ImageRef points at an image either embedded in the capture (Data) or
// reachable over HTTP (URL). Exactly one of the two is set.
type ImageRef struct {
	URL  string `json:"url,omitempty"`
	Data []byte `json:"data,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

// CapturedContent is the raw payload handed to the pipeline by the
// capture trigger. It is immutable once created and consumed by exactly
// one conversion run.
type CapturedContent struct {
	RawText    string     `json:"raw_text"`
	RawHTML    string     `json:"raw_html"`
	ImageRefs  []ImageRef `json:"image_refs,omitempty"`
	SourceHint SourceHint `json:"source_hint"`
}

// IsEmpty reports whether the capture carries no usable payload at all.
func (c CapturedContent) IsEmpty() bool {
	return c.RawText == "" && c.RawHTML == "" && len(c.ImageRefs) == 0
}
