// Package history records completed conversion runs.
package history

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// Service is the history sink. Recording is best-effort: a storage
// failure is logged and swallowed so it can never fail the conversion
// that produced the entry. A nil storage disables history entirely.
type Service struct {
	storage interfaces.HistoryStorage
	logger  arbor.ILogger
}

func NewService(storage interfaces.HistoryStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

var _ interfaces.HistorySink = (*Service)(nil)

// Record persists one history entry, filling in the ID and timestamp
// when absent.
func (s *Service) Record(ctx context.Context, entry models.HistoryEntry) error {
	if s.storage == nil {
		return nil
	}
	if entry.ID == "" {
		entry.ID = common.NewHistoryID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if err := s.storage.Insert(ctx, entry); err != nil {
		s.logger.Warn().
			Err(err).
			Str("output", entry.OutputPath).
			Msg("Failed to record history entry")
		return nil
	}

	s.logger.Debug().
		Str("id", entry.ID).
		Bool("success", entry.Success).
		Str("source", string(entry.SourceKind)).
		Msg("History entry recorded")

	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if s.storage == nil {
		return nil, nil
	}
	return s.storage.List(ctx, limit)
}
