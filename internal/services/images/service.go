// Package images resolves image references in a normalized document
// into embedded assets ready for packaging.
package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// Service downloads or decodes referenced images, assigns them stable
// asset names, and embeds them in the document. References that fail
// to resolve are dropped with a warning; a missing image never fails
// the conversion.
type Service struct {
	client    *http.Client
	maxSize   int64
	enableOCR bool
	ocrBinary string
	logger    arbor.ILogger
}

func NewService(cfg common.ImagesConfig, logger arbor.ILogger) *Service {
	timeout := time.Duration(cfg.FetchTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxSize := int64(cfg.MaxFetchSize)
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &Service{
		client:    &http.Client{Timeout: timeout},
		maxSize:   maxSize,
		enableOCR: cfg.EnableOCR,
		ocrBinary: cfg.OCRBinary,
		logger:    logger,
	}
}

// Resolve replaces every image block's reference with an embedded
// asset. Blocks whose reference cannot be resolved are removed so the
// packaged book never points to a missing asset.
func (s *Service) Resolve(ctx context.Context, doc *models.NormalizedDocument) {
	kept := doc.Blocks[:0]
	index := len(doc.Images)

	for _, block := range doc.Blocks {
		if block.Kind != models.BlockImage {
			kept = append(kept, block)
			continue
		}
		if block.AssetName != "" {
			kept = append(kept, block)
			continue
		}
		if block.Ref == nil {
			continue
		}

		asset, err := s.resolveRef(ctx, *block.Ref, index)
		if err != nil {
			s.logger.Warn().
				Str("url", block.Ref.URL).
				Err(err).
				Msg("Dropping unresolvable image")
			continue
		}

		index++
		doc.Images = append(doc.Images, *asset)
		block.AssetName = asset.Name
		block.Ref = nil
		if block.Text == "" {
			block.Text = asset.Name
		}
		kept = append(kept, block)
	}

	doc.Blocks = kept
}

// resolveRef obtains the image bytes from inline data, a data URI, or
// a remote fetch, and names the asset by its sniffed media type.
func (s *Service) resolveRef(ctx context.Context, ref models.ImageRef, index int) (*models.ImageAsset, error) {
	var data []byte
	var err error

	switch {
	case len(ref.Data) > 0:
		data = ref.Data
	case strings.HasPrefix(ref.URL, "data:"):
		data, err = decodeDataURI(ref.URL)
	case strings.HasPrefix(ref.URL, "http://") || strings.HasPrefix(ref.URL, "https://"):
		data, err = s.fetch(ctx, ref.URL)
	default:
		err = fmt.Errorf("unsupported image reference %q", ref.URL)
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	data = s.normalize(data)

	mediaType, ext := sniffImage(data)
	if mediaType == "" {
		return nil, fmt.Errorf("unrecognized image format")
	}

	return &models.ImageAsset{
		Name:      fmt.Sprintf("image_%03d%s", index+1, ext),
		MediaType: mediaType,
		Data:      data,
	}, nil
}

func (s *Service) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "cliptoepub/"+common.GetVersion())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", imageURL, resp.StatusCode)
	}
	if resp.ContentLength > s.maxSize {
		return nil, fmt.Errorf("image exceeds size limit (%d bytes)", resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("image exceeds size limit (%d bytes)", s.maxSize)
	}
	return data, nil
}

// decodeDataURI decodes a base64 data URI payload.
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URI")
	}
	header, payload := uri[:comma], uri[comma+1:]
	if !strings.Contains(header, "base64") {
		return nil, fmt.Errorf("unsupported data URI encoding")
	}
	return base64.StdEncoding.DecodeString(payload)
}

// sniffImage determines the media type from magic bytes. Only formats
// the EPUB readers commonly support are accepted.
func sniffImage(data []byte) (mediaType, ext string) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "image/png", ".png"
	case "image/jpeg":
		return "image/jpeg", ".jpg"
	case "image/gif":
		return "image/gif", ".gif"
	case "image/webp":
		return "image/webp", ".webp"
	default:
		if strings.HasPrefix(strings.TrimSpace(string(data[:min(len(data), 256)])), "<svg") {
			return "image/svg+xml", ".svg"
		}
		return "", ""
	}
}
