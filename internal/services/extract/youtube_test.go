package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// fakeFetcher returns a canned transcript or error.
type fakeFetcher struct {
	transcript string
	err        error
	calls      int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.transcript, f.err
}

func TestYouTubeExtractorSegmentsTranscript(t *testing.T) {
	lines := make([]string, 12)
	for i := range lines {
		lines[i] = "spoken line"
	}
	fetcher := &fakeFetcher{transcript: strings.Join(lines, "\n")}
	e := NewYouTubeExtractor(fetcher, arbor.NewLogger())

	doc, err := e.Extract(context.Background(), models.CapturedContent{
		RawText: "https://www.youtube.com/watch?v=abc123",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times", fetcher.calls)
	}
	if doc.Title != "YouTube Transcript" {
		t.Errorf("title = %q", doc.Title)
	}
	// 12 lines at 8 per paragraph makes two blocks.
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(doc.Blocks))
	}
	for _, b := range doc.Blocks {
		if b.Kind != models.BlockParagraph {
			t.Errorf("block kind = %q", b.Kind)
		}
	}
}

func TestYouTubeExtractorPropagatesSubtitleFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		err: models.NewPipelineError(models.ErrKindSubtitleUnavailable, models.ErrNoSubtitlesAvailable),
	}
	e := NewYouTubeExtractor(fetcher, arbor.NewLogger())

	_, err := e.Extract(context.Background(), models.CapturedContent{
		RawText: "https://youtu.be/abc123",
	})
	if !errors.Is(err, models.ErrNoSubtitlesAvailable) {
		t.Errorf("error = %v, want ErrNoSubtitlesAvailable", err)
	}
	if models.KindOf(err) != models.ErrKindSubtitleUnavailable {
		t.Errorf("kind = %q", models.KindOf(err))
	}
}

func TestRegistryRoutesYouTubeWhenFetcherPresent(t *testing.T) {
	fetcher := &fakeFetcher{transcript: "hello there\ngeneral remarks"}
	registry := NewRegistry(0, fetcher, arbor.NewLogger())

	doc, err := registry.Extract(context.Background(), models.KindYouTubeURL, models.CapturedContent{
		RawText: "https://www.youtube.com/watch?v=abc123",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times", fetcher.calls)
	}
	if len(doc.Blocks) == 0 {
		t.Fatal("no blocks extracted")
	}
}
