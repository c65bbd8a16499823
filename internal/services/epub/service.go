// Package epub packages a book artifact into an EPUB 3 container.
package epub

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// Service writes book artifacts to the output directory. The file is
// assembled in a temporary location and renamed into place, so a
// failed run never leaves a partial book behind.
type Service struct {
	outputDir      string
	styleName      string
	stylesheetPath string
	logger         arbor.ILogger
}

func NewService(cfg common.OutputConfig, logger arbor.ILogger) *Service {
	return &Service{
		outputDir:      cfg.Dir,
		styleName:      cfg.Style,
		stylesheetPath: cfg.Stylesheet,
		logger:         logger,
	}
}

// Package writes the artifact as an EPUB and returns the final path.
func (s *Service) Package(artifact *models.BookArtifact) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", models.NewPipelineError(models.ErrKindPackagingIO,
			fmt.Errorf("creating output dir %s: %w", s.outputDir, err))
	}

	styleName := artifact.StyleName
	if styleName == "" {
		styleName = s.styleName
	}
	_, css, err := ResolveStyle(styleName, s.stylesheetPath)
	if err != nil {
		return "", models.NewPipelineError(models.ErrKindPackagingIO, err)
	}

	tmp, err := os.CreateTemp(s.outputDir, ".cliptoepub-*.tmp")
	if err != nil {
		return "", models.NewPipelineError(models.ErrKindPackagingIO,
			fmt.Errorf("creating temp file: %w", err))
	}
	tmpPath := tmp.Name()

	if err := s.writeContainer(tmp, artifact, css); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", models.NewPipelineError(models.ErrKindPackagingIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", models.NewPipelineError(models.ErrKindPackagingIO, err)
	}

	finalPath := s.resolvePath(artifact.Metadata.Title)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", models.NewPipelineError(models.ErrKindPackagingIO,
			fmt.Errorf("moving book into place: %w", err))
	}

	s.logger.Info().
		Str("path", finalPath).
		Int("chapters", len(artifact.Chapters)).
		Int("images", len(artifact.Images)).
		Msg("EPUB created")

	return finalPath, nil
}

// writeContainer streams the full EPUB zip to w. The mimetype entry
// must be first and stored uncompressed.
func (s *Service) writeContainer(w *os.File, artifact *models.BookArtifact, css string) error {
	zw := zip.NewWriter(w)

	mimetype, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	if _, err := mimetype.Write([]byte("application/epub+zip")); err != nil {
		return err
	}

	bookID := common.NewBookID()
	now := time.Now()

	opf, err := buildOPF(bookID, artifact, now)
	if err != nil {
		return fmt.Errorf("building package document: %w", err)
	}
	ncx, err := buildNCX(bookID, artifact)
	if err != nil {
		return fmt.Errorf("building ncx: %w", err)
	}

	entries := []struct {
		name string
		data []byte
	}{
		{"META-INF/container.xml", []byte(containerXML)},
		{"OEBPS/content.opf", opf},
		{"OEBPS/nav.xhtml", []byte(renderNav(artifact))},
		{"OEBPS/toc.ncx", ncx},
		{"OEBPS/styles.css", []byte(css)},
	}
	for i, ch := range artifact.Chapters {
		entries = append(entries, struct {
			name string
			data []byte
		}{
			fmt.Sprintf("OEBPS/chapter_%03d.xhtml", i+1),
			[]byte(renderChapter(ch)),
		})
	}
	for _, img := range artifact.Images {
		entries = append(entries, struct {
			name string
			data []byte
		}{"OEBPS/images/" + img.Name, img.Data})
	}

	for _, entry := range entries {
		f, err := zw.Create(entry.name)
		if err != nil {
			return fmt.Errorf("adding %s: %w", entry.name, err)
		}
		if _, err := f.Write(entry.data); err != nil {
			return fmt.Errorf("writing %s: %w", entry.name, err)
		}
	}

	return zw.Close()
}

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

// resolvePath builds a collision-free output path from the sanitized
// title and a timestamp.
func (s *Service) resolvePath(title string) string {
	base := fmt.Sprintf("%s_%s", SanitizeFilename(title), time.Now().Format("20060102_150405"))

	path := filepath.Join(s.outputDir, base+".epub")
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(s.outputDir, fmt.Sprintf("%s_%d.epub", base, i))
	}
}

// SanitizeFilename replaces characters unsafe for filenames and caps
// the length.
func SanitizeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := strings.TrimSpace(b.String())
	if name == "" {
		name = "Untitled"
	}
	if runes := []rune(name); len(runes) > 100 {
		name = string(runes[:100])
	}
	return name
}
