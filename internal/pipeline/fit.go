package pipeline

import (
	"fmt"
	"math"
)

// FitGeometry is the resized size of a source so that its long edge equals
// Target and its aspect ratio is preserved.
type FitGeometry struct {
	Target int
	Width  int
	Height int
}

// ComputeFit returns the geometry fitting width x height into a
// target x target square. A square source takes the else branch and comes
// out as target x target.
func ComputeFit(width, height, target int) (FitGeometry, error) {
	if width <= 0 || height <= 0 || target <= 0 || target > MaxDimension {
		return FitGeometry{}, fmt.Errorf("fit %dx%d into %d: %w", width, height, target, ErrInvalidDimensions)
	}

	aspect := float64(width) / float64(height)

	var nw, nh int
	if width > height {
		nw = target
		nh = clampEdge(int(math.Round(float64(target)/aspect)), target)
	} else {
		nw = clampEdge(int(math.Round(float64(target)*aspect)), target)
		nh = target
	}

	return FitGeometry{Target: target, Width: nw, Height: nh}, nil
}

// clampEdge keeps a rounded short edge within [1, target].
func clampEdge(v, target int) int {
	if v < 1 {
		return 1
	}
	if v > target {
		return target
	}
	return v
}

// Padding returns the left/top offset of the fitted content on the square
// canvas. An odd remainder leaves the extra pixel on the right/bottom.
func (g FitGeometry) Padding() (left, top int) {
	return (g.Target - g.Width) / 2, (g.Target - g.Height) / 2
}
