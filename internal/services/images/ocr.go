package images

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// ExtractText runs OCR over the document's embedded images when the
// document carries no text blocks, appending recognized text as
// paragraphs. OCR failures are logged and skipped.
func (s *Service) ExtractText(ctx context.Context, doc *models.NormalizedDocument) {
	if !s.enableOCR || hasTextBlocks(doc) || len(doc.Images) == 0 {
		return
	}

	for _, img := range doc.Images {
		text, err := s.runOCR(ctx, img)
		if err != nil {
			s.logger.Warn().
				Str("image", img.Name).
				Err(err).
				Msg("OCR failed")
			continue
		}
		for _, para := range strings.Split(text, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			doc.Blocks = append(doc.Blocks, models.Block{
				Kind: models.BlockParagraph,
				Text: para,
			})
		}
	}
}

func (s *Service) runOCR(ctx context.Context, img models.ImageAsset) (string, error) {
	binary := s.ocrBinary
	if binary == "" {
		binary = "tesseract"
	}

	tmpDir, err := os.MkdirTemp("", "cliptoepub-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	imgPath := filepath.Join(tmpDir, img.Name)
	if err := os.WriteFile(imgPath, img.Data, 0o600); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	// "stdout" makes tesseract print recognized text instead of
	// writing an output file.
	cmd := exec.CommandContext(ctx, binary, imgPath, "stdout")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w (%s)", binary, err, firstStderrLine(stderr.String()))
	}

	return out.String(), nil
}

func hasTextBlocks(doc *models.NormalizedDocument) bool {
	for _, b := range doc.Blocks {
		if b.Kind != models.BlockImage && strings.TrimSpace(b.Text) != "" {
			return true
		}
		if len(b.Items) > 0 {
			return true
		}
	}
	return false
}

func firstStderrLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
