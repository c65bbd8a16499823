package interfaces

import (
	"context"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// Extractor turns one content kind into the normalized document model.
// Implementations fail with a wrapped models.ErrKindExtractionFailed when
// input is malformed or empty.
type Extractor interface {
	// Kind returns the content kind this extractor handles.
	Kind() models.ContentKind

	// Extract normalizes the captured payload into a document. Network
	// extractors (url_article) honor ctx cancellation.
	Extract(ctx context.Context, content models.CapturedContent) (*models.NormalizedDocument, error)
}

// Classifier assigns exactly one content kind to a captured payload.
// Classification is total: it never fails and falls back to plain_text.
type Classifier interface {
	Classify(content models.CapturedContent) models.ContentKind
}
