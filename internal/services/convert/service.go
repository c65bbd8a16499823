// Package convert drives the capture-to-book pipeline: classify,
// extract, optionally rewrite, resolve images, split, and package,
// with the cache consulted before and the history sink notified after.
package convert

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/models"
	"github.com/moisescabello/cliptoepub/internal/services/classifier"
	"github.com/moisescabello/cliptoepub/internal/services/epub"
	"github.com/moisescabello/cliptoepub/internal/services/extract"
	"github.com/moisescabello/cliptoepub/internal/services/images"
	"github.com/moisescabello/cliptoepub/internal/services/splitter"
)

// Service is the conversion pipeline. A reentrancy guard allows at
// most one conversion run at a time; triggers arriving while a run is
// active are rejected with ErrConversionInProgress.
type Service struct {
	cfg         *common.Config
	classifier  interfaces.Classifier
	registry    *extract.Registry
	rewriter    interfaces.RewriteService
	images      *images.Service
	splitter    *splitter.Service
	packager    *epub.Service
	cache       interfaces.CacheStorage
	history     interfaces.HistorySink
	accumulator *Accumulator
	logger      arbor.ILogger

	inFlight atomic.Bool
}

// Options carries the pipeline's collaborators. Rewriter, cache, and
// history may be nil; the corresponding stage is skipped.
type Options struct {
	Classifier interfaces.Classifier
	Registry   *extract.Registry
	Rewriter   interfaces.RewriteService
	Images     *images.Service
	Cache      interfaces.CacheStorage
	History    interfaces.HistorySink
}

func NewService(cfg *common.Config, opts Options, logger arbor.ILogger) *Service {
	cls := opts.Classifier
	if cls == nil {
		cls = classifier.NewService(logger)
	}
	return &Service{
		cfg:         cfg,
		classifier:  cls,
		registry:    opts.Registry,
		rewriter:    opts.Rewriter,
		images:      opts.Images,
		splitter:    splitter.NewService(cfg.Book.ChapterWords, logger),
		packager:    epub.NewService(cfg.Output, logger),
		cache:       opts.Cache,
		history:     opts.History,
		accumulator: NewAccumulator(cfg.Accumulator.MaxClips, cfg.Accumulator.Strict, logger),
		logger:      logger,
	}
}

// Accumulator exposes the accumulation session for the trigger layer.
func (s *Service) Accumulator() *Accumulator {
	return s.accumulator
}

// Convert runs the full pipeline for one capture and returns the
// structured outcome. Exactly one of RunResult.Success or ErrKind is
// meaningful; a failed run writes nothing to the output directory.
func (s *Service) Convert(ctx context.Context, content models.CapturedContent) (*models.RunResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, models.ErrConversionInProgress
	}
	defer s.inFlight.Store(false)

	result, err := s.run(ctx, content)
	if err != nil {
		kind := models.KindOf(err)
		s.logger.Error().
			Err(err).
			Str("kind", string(kind)).
			Msg("Conversion failed")
		s.recordHistory(ctx, models.HistoryEntry{
			SourceKind: s.classifier.Classify(content),
			Success:    false,
		})
		return &models.RunResult{Success: false, ErrKind: kind}, err
	}
	return result, nil
}

// ConvertAccumulated finalizes the open accumulation session and
// converts the combined capture as one book.
func (s *Service) ConvertAccumulated(ctx context.Context) (*models.RunResult, error) {
	combined, err := s.accumulator.Finalize()
	if err != nil {
		return nil, models.NewPipelineError(models.ErrKindExtractionFailed, err)
	}
	return s.Convert(ctx, combined)
}

func (s *Service) run(ctx context.Context, content models.CapturedContent) (*models.RunResult, error) {
	if content.IsEmpty() {
		return nil, models.NewPipelineError(models.ErrKindExtractionFailed, models.ErrEmptyContent)
	}

	started := time.Now()
	kind := s.classifier.Classify(content)
	prompt := s.activePrompt()

	s.logger.Info().
		Str("kind", string(kind)).
		Str("source", string(content.SourceHint)).
		Msg("Conversion started")

	fingerprint := s.fingerprint(kind, content, prompt)
	if hit := s.cacheLookup(ctx, fingerprint); hit != nil {
		s.logger.Info().
			Str("path", hit.ArtifactPath).
			Uint64("hits", hit.Hits).
			Msg("Cache hit, reusing artifact")
		result := &models.RunResult{
			Success:      true,
			ArtifactPath: hit.ArtifactPath,
			SourceKind:   kind,
			CacheHit:     true,
		}
		s.recordHistory(ctx, models.HistoryEntry{
			SourceKind: kind,
			OutputPath: hit.ArtifactPath,
			Success:    true,
		})
		return result, nil
	}

	doc, err := s.registry.Extract(ctx, kind, content)
	if err != nil {
		return nil, err
	}

	// Images captured alongside the text join the document before
	// resolution.
	for i := range content.ImageRefs {
		doc.Blocks = append(doc.Blocks, models.Block{
			Kind: models.BlockImage,
			Ref:  &content.ImageRefs[i],
		})
	}

	if s.rewriter != nil && prompt != nil {
		rewritten, err := s.rewrite(ctx, doc, prompt, content.RawHTML)
		switch {
		case err == nil:
			doc = rewritten
		case kind == models.KindYouTubeURL && models.KindOf(err) == models.ErrKindLLMValidation:
			// A transcript is still a book; keep it when the model
			// returns nothing usable.
			s.logger.Warn().Err(err).Msg("Rewrite produced no usable output, keeping raw transcript")
		default:
			return nil, err
		}
	}

	if s.images != nil {
		s.images.Resolve(ctx, doc)
		s.images.ExtractText(ctx, doc)
	}

	if err := ctx.Err(); err != nil {
		return nil, models.NewPipelineError(models.ErrKindCancelled, err)
	}

	title := doc.Title
	if title == "" {
		title = fallbackTitle(started)
	}

	chapters := s.splitter.Split(doc)

	artifact := &models.BookArtifact{
		Metadata: models.BookMetadata{
			Title:    title,
			Author:   s.cfg.Book.Author,
			Language: s.cfg.Book.Language,
			Source:   sourceLabel(kind, content),
		},
		Chapters:  chapters,
		Images:    doc.Images,
		StyleName: s.cfg.Output.Style,
	}

	path, err := s.packager.Package(artifact)
	if err != nil {
		return nil, err
	}

	s.cacheStore(ctx, fingerprint, path)
	s.recordHistory(ctx, models.HistoryEntry{
		SourceKind:   kind,
		OutputPath:   path,
		Success:      true,
		Title:        title,
		ChapterCount: len(chapters),
		SizeBytes:    fileSize(path),
	})

	s.logger.Info().
		Str("path", path).
		Int("chapters", len(chapters)).
		Dur("duration", time.Since(started)).
		Msg("Conversion completed")

	return &models.RunResult{
		Success:      true,
		ArtifactPath: path,
		SourceKind:   kind,
	}, nil
}

// rewrite sends the document through the LLM and re-extracts the
// returned Markdown. Image blocks survive the round trip by being
// reattached after the rewritten text. HTML captures are converted to
// Markdown directly so the prompt keeps the original inline formatting.
func (s *Service) rewrite(ctx context.Context, doc *models.NormalizedDocument, prompt *models.PromptConfig, rawHTML string) (*models.NormalizedDocument, error) {
	var imageBlocks []models.Block
	for _, b := range doc.Blocks {
		if b.Kind == models.BlockImage {
			imageBlocks = append(imageBlocks, b)
		}
	}

	input := renderDocText(doc)
	if rawHTML != "" {
		if converted, err := htmlmd.NewConverter("", true, nil).ConvertString(rawHTML); err == nil && strings.TrimSpace(converted) != "" {
			input = converted
		}
	}

	text, err := s.rewriter.Rewrite(ctx, input, prompt)
	if err != nil {
		return nil, err
	}

	markdown := extract.NewMarkdownExtractor(s.logger)
	rewritten, err := markdown.Extract(ctx, models.CapturedContent{RawText: text})
	if err != nil {
		return nil, models.NewPipelineError(models.ErrKindExtractionFailed,
			fmt.Errorf("rewritten text yielded no content: %w", err))
	}

	if rewritten.Title == "" {
		rewritten.Title = SanitizeFirstLine(text)
	}
	rewritten.Blocks = append(rewritten.Blocks, imageBlocks...)
	rewritten.Images = doc.Images

	return rewritten, nil
}

// renderDocText flattens a document back into Markdown-flavored text
// for the rewrite prompt.
func renderDocText(doc *models.NormalizedDocument) string {
	var b strings.Builder
	if doc.Title != "" {
		b.WriteString("# " + doc.Title + "\n\n")
	}
	for _, block := range doc.Blocks {
		switch block.Kind {
		case models.BlockHeading:
			level := block.Level
			if level < 1 || level > 6 {
				level = 2
			}
			b.WriteString(strings.Repeat("#", level) + " " + block.Text + "\n\n")
		case models.BlockParagraph:
			b.WriteString(block.Text + "\n\n")
		case models.BlockList:
			for _, item := range block.Items {
				b.WriteString("- " + item + "\n")
			}
			b.WriteString("\n")
		case models.BlockCode:
			b.WriteString("```\n" + block.Text + "\n```\n\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// fingerprint derives the cache key from the classified input and the
// active prompt identity. Same capture with a different prompt is a
// different book.
func (s *Service) fingerprint(kind models.ContentKind, content models.CapturedContent, prompt *models.PromptConfig) string {
	identity := ""
	if prompt != nil {
		identity = prompt.Identity()
	}
	return common.Fingerprint(string(kind), content.RawText, content.RawHTML, identity)
}

func (s *Service) activePrompt() *models.PromptConfig {
	if len(s.cfg.LLM.Prompts) == 0 {
		return nil
	}
	return s.cfg.LLM.GetActivePrompt()
}

// cacheLookup returns a still-valid cache entry or nil. Entries whose
// artifact file has been deleted are ignored.
func (s *Service) cacheLookup(ctx context.Context, fingerprint string) *models.CacheEntry {
	if s.cache == nil || !s.cfg.Cache.Enabled {
		return nil
	}
	entry, err := s.cache.Lookup(ctx, fingerprint)
	if err != nil {
		if err != interfaces.ErrCacheMiss {
			s.logger.Warn().Err(err).Msg("Cache lookup failed")
		}
		return nil
	}
	if _, err := os.Stat(entry.ArtifactPath); err != nil {
		s.logger.Debug().
			Str("path", entry.ArtifactPath).
			Msg("Cached artifact missing on disk, reconverting")
		return nil
	}
	return entry
}

func (s *Service) cacheStore(ctx context.Context, fingerprint, path string) {
	if s.cache == nil || !s.cfg.Cache.Enabled {
		return
	}
	if err := s.cache.Store(ctx, fingerprint, path); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to store cache entry")
	}
}

func (s *Service) recordHistory(ctx context.Context, entry models.HistoryEntry) {
	if s.history == nil || !s.cfg.History.Enabled {
		return
	}
	_ = s.history.Record(ctx, entry)
}

func sourceLabel(kind models.ContentKind, content models.CapturedContent) string {
	switch kind {
	case models.KindURLArticle, models.KindYouTubeURL:
		return strings.TrimSpace(content.RawText)
	default:
		return string(content.SourceHint)
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
