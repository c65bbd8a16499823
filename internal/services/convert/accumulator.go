package convert

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// clipSeparator joins accumulated clips so the extractor keeps them as
// distinct sections.
const clipSeparator = "\n\n---\n\n"

// Clip is one capture held in an open accumulation session.
type Clip struct {
	ID      string
	Text    string
	AddedAt time.Time
}

// Accumulator collects sequential captures into one pending book.
// State is process-local and guarded by a mutex; only one accumulation
// session exists at a time.
type Accumulator struct {
	mu        sync.Mutex
	clips     []Clip
	startedAt time.Time
	maxClips  int
	strict    bool
	logger    arbor.ILogger
}

func NewAccumulator(maxClips int, strict bool, logger arbor.ILogger) *Accumulator {
	if maxClips <= 0 {
		maxClips = 50
	}
	return &Accumulator{
		maxClips: maxClips,
		strict:   strict,
		logger:   logger,
	}
}

// Begin opens an accumulation session. In strict mode an already open
// session must be explicitly Reset before a new one starts; otherwise
// new clips simply join the open session.
func (a *Accumulator) Begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.clips) > 0 && a.strict {
		return fmt.Errorf("accumulation session already active (%d clips), reset it first", len(a.clips))
	}
	return nil
}

// Add appends one capture to the session, opening a session if none is
// active. In strict mode a capture arriving for an already-open session
// started by a different flow must be preceded by Reset; non-strict
// mode just appends.
func (a *Accumulator) Add(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return a.Count(), models.ErrEmptyContent
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.clips) >= a.maxClips {
		return len(a.clips), fmt.Errorf("accumulator is full (%d clips)", a.maxClips)
	}
	if len(a.clips) == 0 {
		a.startedAt = time.Now()
	}
	a.clips = append(a.clips, Clip{
		ID:      common.NewClipID(),
		Text:    text,
		AddedAt: time.Now(),
	})

	a.logger.Info().
		Int("clips", len(a.clips)).
		Int("max", a.maxClips).
		Msg("Clip accumulated")

	return len(a.clips), nil
}

// Count returns the number of accumulated clips.
func (a *Accumulator) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.clips)
}

// Active reports whether an accumulation session is open.
func (a *Accumulator) Active() bool {
	return a.Count() > 0
}

// Strict reports whether an open session must be explicitly reset
// before a new one starts.
func (a *Accumulator) Strict() bool {
	return a.strict
}

// Clips returns a snapshot of the open session.
func (a *Accumulator) Clips() []Clip {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Clip, len(a.clips))
	copy(out, a.clips)
	return out
}

// Finalize closes the session and returns the combined capture for
// conversion. The accumulator is empty afterwards.
func (a *Accumulator) Finalize() (models.CapturedContent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.clips) == 0 {
		return models.CapturedContent{}, models.ErrEmptyContent
	}

	texts := make([]string, len(a.clips))
	for i, c := range a.clips {
		texts[i] = c.Text
	}
	combined := strings.Join(texts, clipSeparator)
	count := len(a.clips)
	a.clips = nil

	a.logger.Info().
		Int("clips", count).
		Dur("session", time.Since(a.startedAt)).
		Msg("Accumulation finalized")

	return models.CapturedContent{
		RawText:    combined,
		SourceHint: models.SourceClipboard,
	}, nil
}

// Reset discards the open session.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.clips) > 0 {
		a.logger.Info().Int("discarded", len(a.clips)).Msg("Accumulation reset")
	}
	a.clips = nil
}
