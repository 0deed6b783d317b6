package testutil

import (
	"image"
	"image/color"
)

// GradientImage returns an opaque image whose red channel follows x and
// green channel follows y.
func GradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: 128, A: 255})
		}
	}

	return img
}

// SolidImage returns an image filled with c.
func SolidImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// HalfTransparentImage returns an image whose left half is fully
// transparent and right half is opaque c.
func HalfTransparentImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := width / 2; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
