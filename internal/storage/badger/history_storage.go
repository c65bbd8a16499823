package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// HistoryStorage implements the HistoryStorage interface for Badger
type HistoryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewHistoryStorage creates a new HistoryStorage instance
func NewHistoryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.HistoryStorage {
	return &HistoryStorage{
		db:     db,
		logger: logger,
	}
}

// Insert persists one history entry
func (s *HistoryStorage) Insert(ctx context.Context, entry models.HistoryEntry) error {
	if err := s.db.Store().Insert(entry.ID, &entry); err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first
func (s *HistoryStorage) List(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := s.db.Store().Find(&entries, &badgerhold.Query{}); err != nil {
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}
