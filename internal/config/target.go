package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"squarefit/internal/pipeline"
)

var (
	ErrInvalidTarget = errors.New("invalid target resolution")
	ErrInvalidColor  = errors.New("invalid background color")
)

// ParseTarget parses a user-supplied square size. It must be an integer in
// [1, pipeline.MaxDimension]; surrounding whitespace is ignored.
func ParseTarget(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidTarget)
	}
	if err := ValidateTarget(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ValidateTarget rejects square sizes the pipeline cannot allocate.
func ValidateTarget(n int) error {
	if n <= 0 || n > pipeline.MaxDimension {
		return fmt.Errorf("target %d (allowed 1..%d): %w", n, pipeline.MaxDimension, ErrInvalidTarget)
	}
	return nil
}

// ParseColor parses #rgb, #rrggbb or #rrggbbaa (the leading # is optional).
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// BackgroundColor returns the parsed Background field.
func (c *Config) BackgroundColor() (color.NRGBA, error) {
	return ParseColor(c.Background)
}
