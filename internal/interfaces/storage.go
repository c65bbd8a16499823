package interfaces

import (
	"context"
	"errors"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// ErrCacheMiss is returned when no entry exists for a fingerprint.
var ErrCacheMiss = errors.New("cache entry not found")

// CacheStorage persists the conversion cache fingerprint table.
type CacheStorage interface {
	// Lookup returns the entry for a fingerprint and increments its hit
	// counter, or ErrCacheMiss.
	Lookup(ctx context.Context, fingerprint string) (*models.CacheEntry, error)

	// Store creates or replaces the entry for a fingerprint.
	Store(ctx context.Context, fingerprint, artifactPath string) error

	// Clear removes every cache entry. The only invalidation path.
	Clear(ctx context.Context) error
}

// HistoryStorage persists conversion history entries.
type HistoryStorage interface {
	Insert(ctx context.Context, entry models.HistoryEntry) error
	List(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

// StorageManager provides access to all storage backends and owns the
// underlying database lifecycle.
type StorageManager interface {
	CacheStorage() CacheStorage
	HistoryStorage() HistoryStorage
	Close() error
}
