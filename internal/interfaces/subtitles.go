package interfaces

import "context"

// SubtitleFetcher retrieves a plain-text transcript for a video URL.
// Implementations try the caller's preferred languages in order, native
// tracks before auto-generated ones when so configured, and fail with
// models.ErrNoSubtitlesAvailable when nothing matches.
type SubtitleFetcher interface {
	Fetch(ctx context.Context, videoURL string) (string, error)
}
