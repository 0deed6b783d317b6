package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
)

// Options controls how a source is squared.
type Options struct {
	Target     int
	Background color.Color
	MaxBytes   int64
}

// Resample scales the source pixels to the fit geometry with a bicubic
// (Catmull-Rom) filter.
func Resample(src *SourceImage, g FitGeometry) image.Image {
	return imaging.Resize(src.Pixels, g.Width, g.Height, imaging.CatmullRom)
}

// Square runs fit -> resample -> compose for an already decoded source.
func Square(src *SourceImage, target int, bg color.Color) (*Canvas, FitGeometry, error) {
	if src == nil || src.Pixels == nil {
		return nil, FitGeometry{}, fmt.Errorf("square: nil source")
	}
	g, err := ComputeFit(src.Width, src.Height, target)
	if err != nil {
		return nil, FitGeometry{}, err
	}
	resized := Resample(src, g)
	canvas, err := ComposeSquare(resized, target, bg, ResolveStacking(src.HasNativeAlpha()))
	if err != nil {
		return nil, g, err
	}
	return canvas, g, nil
}

// Processed describes one image that went through Process.
type Processed struct {
	Canvas   *Canvas
	Geometry FitGeometry
	Source   Format
	Ext      string
}

// Process runs the full pipeline: decode -> fit -> resample -> compose ->
// encode. The output is written to w in the format named by ext, or in the
// source format when ext is empty. Errors are *StageError values.
func Process(r io.Reader, w io.Writer, ext string, opts Options) (*Processed, error) {
	// Fail on a bad extension before doing any pixel work
	if ext != "" {
		if _, err := OutputFormat(ext); err != nil {
			return nil, &StageError{Stage: StageEncode, Err: err}
		}
	}

	src, err := Decode(r, opts.MaxBytes)
	if err != nil {
		return nil, &StageError{Stage: StageDecode, Err: err}
	}
	if ext == "" {
		ext = src.Format.Extension()
	}

	canvas, g, err := Square(src, opts.Target, opts.Background)
	if err != nil {
		return nil, &StageError{Stage: StageSquare, Err: err}
	}

	if err := Encode(canvas.Image, w, ext); err != nil {
		return nil, &StageError{Stage: StageEncode, Err: err}
	}
	return &Processed{Canvas: canvas, Geometry: g, Source: src.Format, Ext: ext}, nil
}
