package subtitles

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// Service fetches video subtitles through the yt-dlp binary. Language
// preferences are tried in order; with PreferNative set, every native
// track is tried before any auto-generated one.
type Service struct {
	binary       string
	languages    []string
	preferNative bool
	timeout      time.Duration
	logger       arbor.ILogger
}

func NewService(cfg common.SubtitlesConfig, logger arbor.ILogger) *Service {
	binary := cfg.Binary
	if binary == "" {
		binary = "yt-dlp"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Service{
		binary:       binary,
		languages:    cfg.Languages,
		preferNative: cfg.PreferNative,
		timeout:      timeout,
		logger:       logger,
	}
}

var _ interfaces.SubtitleFetcher = (*Service)(nil)

// Fetch downloads the best available subtitle track for the video and
// returns its plain text. Returns ErrNoSubtitlesAvailable wrapped in a
// pipeline error when no configured language has a track.
func (s *Service) Fetch(ctx context.Context, videoURL string) (string, error) {
	attempts := s.attemptOrder()

	for _, a := range attempts {
		text, err := s.fetchTrack(ctx, videoURL, a.lang, a.auto)
		if err == nil && text != "" {
			s.logger.Info().
				Str("url", videoURL).
				Str("lang", a.lang).
				Bool("auto", a.auto).
				Msg("Subtitles fetched")
			return text, nil
		}
		if ctx.Err() != nil {
			return "", models.NewPipelineError(models.ErrKindCancelled, ctx.Err())
		}
		s.logger.Debug().
			Str("url", videoURL).
			Str("lang", a.lang).
			Bool("auto", a.auto).
			Err(err).
			Msg("Subtitle track unavailable")
	}

	return "", models.NewPipelineError(models.ErrKindSubtitleUnavailable, models.ErrNoSubtitlesAvailable)
}

type attempt struct {
	lang string
	auto bool
}

func (s *Service) attemptOrder() []attempt {
	var attempts []attempt
	if s.preferNative {
		for _, lang := range s.languages {
			attempts = append(attempts, attempt{lang: lang, auto: false})
		}
		for _, lang := range s.languages {
			attempts = append(attempts, attempt{lang: lang, auto: true})
		}
		return attempts
	}
	for _, lang := range s.languages {
		attempts = append(attempts, attempt{lang: lang, auto: false})
		attempts = append(attempts, attempt{lang: lang, auto: true})
	}
	return attempts
}

// fetchTrack invokes yt-dlp for a single language/track combination and
// parses whatever subtitle file it produced.
func (s *Service) fetchTrack(ctx context.Context, videoURL, lang string, auto bool) (string, error) {
	tmpDir, err := os.MkdirTemp("", "cliptoepub-subs-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	subFlag := "--write-subs"
	if auto {
		subFlag = "--write-auto-subs"
	}

	args := []string{
		"--skip-download",
		subFlag,
		"--sub-langs", lang,
		"--sub-format", "vtt/srt/best",
		"--no-playlist",
		"-o", filepath.Join(tmpDir, "subs.%(ext)s"),
		videoURL,
	}

	cmd := exec.CommandContext(runCtx, s.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("yt-dlp timed out after %s", s.timeout)
		}
		return "", fmt.Errorf("yt-dlp: %w (%s)", err, firstLine(stderr.String()))
	}

	path, err := findSubtitleFile(tmpDir)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read subtitle file: %w", err)
	}

	switch filepath.Ext(path) {
	case ".srt":
		return ParseSRT(string(data)), nil
	default:
		return ParseVTT(string(data)), nil
	}
}

// findSubtitleFile locates the subtitle file yt-dlp wrote, preferring
// vtt over srt when both exist.
func findSubtitleFile(dir string) (string, error) {
	for _, ext := range []string{"*.vtt", "*.srt"} {
		matches, err := filepath.Glob(filepath.Join(dir, ext))
		if err == nil && len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", fmt.Errorf("no subtitle file produced")
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
