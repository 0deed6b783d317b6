package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// DefaultBackground is the backing color for padded canvases.
var DefaultBackground color.Color = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Canvas is a composited target x target image.
type Canvas struct {
	Image     *image.NRGBA
	Footprint image.Rectangle
	Stack     []LayerSpec
}

// ComposeSquare extends resized to a target x target canvas with the
// content centered, and applies the background and content layers in the
// order given by stacking.
func ComposeSquare(resized image.Image, target int, bg color.Color, stacking Stacking) (*Canvas, error) {
	if resized == nil {
		return nil, fmt.Errorf("compose: nil image")
	}
	if target <= 0 || target > MaxDimension {
		return nil, fmt.Errorf("compose target %d: %w", target, ErrInvalidDimensions)
	}
	b := resized.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > target || h > target {
		return nil, fmt.Errorf("compose %dx%d into %d: %w", w, h, target, ErrContentExceedsCanvas)
	}
	if bg == nil {
		bg = DefaultBackground
	}

	left, top := FitGeometry{Target: target, Width: w, Height: h}.Padding()
	footprint := image.Rect(left, top, left+w, top+h)

	canvas := image.NewNRGBA(image.Rect(0, 0, target, target))
	stack := stacking.Order()

	for _, spec := range stack {
		switch spec.Layer {
		case LayerBackground:
			fillBackground(canvas, footprint, spec.Region, bg)
		case LayerContent:
			if spec.Blend == BlendOver {
				canvas = imaging.Overlay(canvas, resized, footprint.Min, 1.0)
			} else {
				canvas = imaging.Paste(canvas, resized, footprint.Min)
			}
		}
	}

	return &Canvas{Image: canvas, Footprint: footprint, Stack: stack}, nil
}

func fillBackground(canvas *image.NRGBA, footprint image.Rectangle, region Region, bg color.Color) {
	src := image.NewUniform(bg)
	switch region {
	case RegionFull:
		draw.Draw(canvas, canvas.Bounds(), src, image.Point{}, draw.Src)
	case RegionFootprint:
		draw.Draw(canvas, footprint, src, image.Point{}, draw.Src)
	case RegionBorder:
		for _, r := range borderRects(canvas.Bounds(), footprint) {
			draw.Draw(canvas, r, src, image.Point{}, draw.Src)
		}
	}
}

// borderRects splits the area of outer not covered by inner into up to four
// bands: top and bottom span the full width, left and right span the
// footprint rows.
func borderRects(outer, inner image.Rectangle) []image.Rectangle {
	var rects []image.Rectangle
	add := func(r image.Rectangle) {
		if !r.Empty() {
			rects = append(rects, r)
		}
	}
	add(image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y))
	add(image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y))
	add(image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y))
	add(image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y))
	return rects
}
