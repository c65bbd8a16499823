package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// CacheStorage implements the CacheStorage interface for Badger
type CacheStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCacheStorage creates a new CacheStorage instance
func NewCacheStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CacheStorage {
	return &CacheStorage{
		db:     db,
		logger: logger,
	}
}

// Lookup retrieves the entry for a fingerprint and increments its hit
// counter. Returns ErrCacheMiss when no entry exists.
func (s *CacheStorage) Lookup(ctx context.Context, fingerprint string) (*models.CacheEntry, error) {
	var entry models.CacheEntry
	err := s.db.Store().Get(fingerprint, &entry)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	entry.Hits++
	if err := s.db.Store().Update(fingerprint, &entry); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to update cache hit counter")
	}

	return &entry, nil
}

// Store creates or replaces the entry for a fingerprint
func (s *CacheStorage) Store(ctx context.Context, fingerprint, artifactPath string) error {
	entry := models.CacheEntry{
		Fingerprint:  fingerprint,
		ArtifactPath: artifactPath,
		CreatedAt:    time.Now(),
	}

	if err := s.db.Store().Upsert(fingerprint, &entry); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	s.logger.Debug().
		Str("fingerprint", fingerprint).
		Str("path", artifactPath).
		Msg("Cache entry stored")

	return nil
}

// Clear removes every cache entry
func (s *CacheStorage) Clear(ctx context.Context) error {
	if err := s.db.Store().DeleteMatching(&models.CacheEntry{}, nil); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	s.logger.Info().Msg("Conversion cache cleared")
	return nil
}
