// Package extract contains the per-kind content extractors. Each
// extractor turns one content kind into the normalized document model.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// Registry maps content kinds to their extractors. Unknown kinds fall
// back to the plain-text extractor so extraction stays total over
// classifier output.
type Registry struct {
	extractors map[models.ContentKind]interfaces.Extractor
	fallback   interfaces.Extractor
	logger     arbor.ILogger
}

// NewRegistry creates a registry with the standard extractors wired in.
// The url_article extractor needs a fetch timeout and the youtube_url
// extractor a subtitle fetcher; everything else is in-process.
func NewRegistry(articleTimeout time.Duration, fetcher interfaces.SubtitleFetcher, logger arbor.ILogger) *Registry {
	plain := NewPlainTextExtractor(logger)
	r := &Registry{
		extractors: make(map[models.ContentKind]interfaces.Extractor),
		fallback:   plain,
		logger:     logger,
	}
	r.Register(NewMarkdownExtractor(logger))
	r.Register(NewHTMLExtractor(logger))
	r.Register(NewRTFExtractor(logger))
	r.Register(NewArticleExtractor(articleTimeout, logger))
	if fetcher != nil {
		r.Register(NewYouTubeExtractor(fetcher, logger))
	}
	r.Register(plain)
	return r
}

// Register adds an extractor for its declared kind.
func (r *Registry) Register(e interfaces.Extractor) {
	r.extractors[e.Kind()] = e
}

// Extract dispatches to the extractor for the given kind.
func (r *Registry) Extract(ctx context.Context, kind models.ContentKind, content models.CapturedContent) (*models.NormalizedDocument, error) {
	e, ok := r.extractors[kind]
	if !ok {
		r.logger.Warn().Str("kind", string(kind)).Msg("No extractor registered, using plain text")
		e = r.fallback
	}

	doc, err := e.Extract(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("extracting %s content: %w", kind, err)
	}
	return doc, nil
}
