package extract

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// YouTubeExtractor turns a video URL into a document by fetching its
// subtitle track and segmenting the transcript into paragraphs.
type YouTubeExtractor struct {
	fetcher interfaces.SubtitleFetcher
	logger  arbor.ILogger
}

func NewYouTubeExtractor(fetcher interfaces.SubtitleFetcher, logger arbor.ILogger) *YouTubeExtractor {
	return &YouTubeExtractor{fetcher: fetcher, logger: logger}
}

func (e *YouTubeExtractor) Kind() models.ContentKind {
	return models.KindYouTubeURL
}

func (e *YouTubeExtractor) Extract(ctx context.Context, content models.CapturedContent) (*models.NormalizedDocument, error) {
	videoURL := strings.TrimSpace(content.RawText)

	transcript, err := e.fetcher.Fetch(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	blocks := transcriptParagraphs(transcript)
	if len(blocks) == 0 {
		return nil, models.NewPipelineError(models.ErrKindSubtitleUnavailable, models.ErrNoSubtitlesAvailable)
	}

	e.logger.Info().
		Str("url", videoURL).
		Int("blocks", len(blocks)).
		Msg("Transcript extracted")

	return &models.NormalizedDocument{Title: "YouTube Transcript", Blocks: blocks}, nil
}

// transcriptParagraphs groups transcript lines into paragraphs of a
// few sentences each so the output reads as prose rather than one
// line per caption cue.
func transcriptParagraphs(transcript string) []models.Block {
	const linesPerParagraph = 8

	var blocks []models.Block
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		blocks = append(blocks, models.Block{
			Kind: models.BlockParagraph,
			Text: strings.Join(current, " "),
		})
		current = current[:0]
	}

	for _, line := range strings.Split(transcript, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
		if len(current) >= linesPerParagraph {
			flush()
		}
	}
	flush()

	return blocks
}
