package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"
)

// DetectFormat sniffs the first bytes of data and returns the format tag.
func DetectFormat(data []byte) (Format, error) {
	ct := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(ct, "image/jpeg"):
		return FormatJPEG, nil
	case strings.HasPrefix(ct, "image/png"):
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("content type %q: %w", ct, ErrNotAnImage)
	}
}

// Decode reads up to maxBytes from r, checks the content type, decodes the
// pixels and applies EXIF orientation. The format tag comes from the
// content, not the file name.
func Decode(r io.Reader, maxBytes int64) (*SourceImage, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	// read up to maxBytes+1 to detect overflow
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}

	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	// Check the header before decoding so a forged size cannot force a
	// huge pixel allocation.
	var cfg image.Config
	switch format {
	case FormatJPEG:
		cfg, err = jpeg.DecodeConfig(bytes.NewReader(data))
	case FormatPNG:
		cfg, err = png.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s header: %w", format, err)
	}
	if !validDimensions(cfg.Width, cfg.Height) {
		return nil, ErrInvalidDimensions
	}

	var img image.Image
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
		if err == nil {
			img = applyOrientation(img, readOrientation(data))
		}
	case FormatPNG:
		img, err = png.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if !validDimensions(w, h) {
		return nil, ErrInvalidDimensions
	}

	return &SourceImage{Width: w, Height: h, Format: format, Pixels: img}, nil
}

func validDimensions(w, h int) bool {
	return w > 0 && h > 0 && w <= MaxDimension && h <= MaxDimension
}
