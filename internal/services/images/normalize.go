package images

import (
	"bytes"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"
)

// Page-fitting bounds for embedded images. Larger rasters are scaled
// down and re-encoded as JPEG to keep books small.
const (
	maxImageWidth  = 1200
	maxImageHeight = 1600
	jpegQuality    = 85
)

// normalize downscales oversized raster images to fit the page bounds
// and re-encodes them as JPEG. Images already within bounds, and
// formats the decoder does not understand, pass through untouched.
func (s *Service) normalize(data []byte) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxImageWidth && h <= maxImageHeight {
		return data
	}

	scale := float64(maxImageWidth) / float64(w)
	if hs := float64(maxImageHeight) / float64(h); hs < scale {
		scale = hs
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaleDown(img, dw, dh), &jpeg.Options{Quality: jpegQuality}); err != nil {
		s.logger.Warn().Err(err).Msg("Image re-encode failed, keeping original")
		return data
	}

	s.logger.Debug().
		Int("width", w).
		Int("height", h).
		Int("scaled_width", dw).
		Int("scaled_height", dh).
		Msg("Image downscaled")

	return buf.Bytes()
}

// scaleDown resamples src into a w x h image by nearest neighbor.
func scaleDown(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	for y := 0; y < h; y++ {
		sy := sb.Min.Y + y*sb.Dy()/h
		for x := 0; x < w; x++ {
			sx := sb.Min.X + x*sb.Dx()/w
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}
