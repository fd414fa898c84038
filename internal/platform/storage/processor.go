package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	"image/png"
	"io"

	_ "golang.org/x/image/bmp" // Register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrUnsupportedImage is returned when no registered decoder understands the data
var ErrUnsupportedImage = errors.New("unsupported image format")

// Thumbnail bounds
const (
	DefaultThumbnailEdge = 300
	MinThumbnailEdge     = 16
	MaxThumbnailEdge     = 1024
)

// ImageProcessor decodes uploaded images
type ImageProcessor struct {
	quality int
}

// NewImageProcessor creates an image processor encoding JPEG thumbnails at quality
func NewImageProcessor(quality int) *ImageProcessor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &ImageProcessor{quality: quality}
}

// Dimensions reads only the image header
func (p *ImageProcessor) Dimensions(_ context.Context, data io.Reader) (int, int, error) {
	if data == nil {
		return 0, 0, errors.New("data cannot be nil")
	}

	cfg, _, err := image.DecodeConfig(data)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return 0, 0, ErrUnsupportedImage
		}
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// ClampThumbnailEdge maps a requested edge length into the supported range.
// Zero or negative selects the default.
func ClampThumbnailEdge(edge int) int {
	switch {
	case edge <= 0:
		return DefaultThumbnailEdge
	case edge < MinThumbnailEdge:
		return MinThumbnailEdge
	case edge > MaxThumbnailEdge:
		return MaxThumbnailEdge
	}
	return edge
}

// Thumbnail scales the image so its longer edge is at most maxEdge and
// returns the encoded bytes with their content type. Images are never upscaled.
func (p *ImageProcessor) Thumbnail(_ context.Context, data io.Reader, maxEdge int) ([]byte, string, error) {
	if data == nil {
		return nil, "", errors.New("data cannot be nil")
	}
	maxEdge = ClampThumbnailEdge(maxEdge)

	src, format, err := image.Decode(data)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedImage
		}
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	dstWidth, dstHeight := fitWithin(bounds.Dx(), bounds.Dy(), maxEdge)

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	contentType := "image/jpeg"
	switch format {
	case "png", "gif":
		contentType = "image/png"
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality})
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return buf.Bytes(), contentType, nil
}

// fitWithin keeps the aspect ratio and never grows the image
func fitWithin(width, height, maxEdge int) (int, int) {
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxEdge {
		return width, height
	}

	scale := float64(maxEdge) / float64(longest)
	w := int(float64(width) * scale)
	h := int(float64(height) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
