// Package splitter cuts a normalized document into chapters under a
// word budget.
package splitter

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// Service splits documents greedily: blocks accumulate into the
// current chapter until adding the next block would exceed the word
// budget. Blocks are atomic and never split internally, so a single
// block larger than the budget becomes a chapter of its own.
type Service struct {
	budget int
	logger arbor.ILogger
}

func NewService(chapterWords int, logger arbor.ILogger) *Service {
	if chapterWords <= 0 {
		chapterWords = 5000
	}
	return &Service{budget: chapterWords, logger: logger}
}

// Split partitions the document's blocks into chapters. Every block
// lands in exactly one chapter and chapter order follows block order.
// An empty document yields a single empty chapter so packaging always
// has something to write.
func (s *Service) Split(doc *models.NormalizedDocument) []models.Chapter {
	if len(doc.Blocks) == 0 {
		return []models.Chapter{{
			Index: 1,
			Title: "Untitled",
		}}
	}

	var chapters []models.Chapter
	var current []models.Block
	words := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		idx := len(chapters) + 1
		chapters = append(chapters, models.Chapter{
			Index:     idx,
			Title:     chapterTitle(current, idx),
			Blocks:    current,
			WordCount: words,
		})
		current = nil
		words = 0
	}

	for _, block := range doc.Blocks {
		bw := block.WordCount()
		if len(current) > 0 && words+bw > s.budget {
			flush()
		}
		current = append(current, block)
		words += bw
	}
	flush()

	s.logger.Debug().
		Int("chapters", len(chapters)).
		Int("budget", s.budget).
		Int("words", doc.WordCount()).
		Msg("Document split")

	return chapters
}

// chapterTitle takes the chapter's first heading as its title, falling
// back to a positional name.
func chapterTitle(blocks []models.Block, index int) string {
	for _, b := range blocks {
		if b.Kind == models.BlockHeading && b.Text != "" {
			return b.Text
		}
	}
	return fmt.Sprintf("Chapter %d", index)
}
