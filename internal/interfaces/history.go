package interfaces

import (
	"context"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// HistorySink records completed conversions. A sink failure must never
// fail the conversion that produced the entry.
type HistorySink interface {
	// Record persists one history entry.
	Record(ctx context.Context, entry models.HistoryEntry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}
