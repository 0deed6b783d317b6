package pipeline_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"squarefit/internal/pipeline"
	"squarefit/internal/testutil"
)

var (
	white = color.NRGBA{255, 255, 255, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)

func TestSquare_WidePNGPaddedTopBottom(t *testing.T) {
	src := &pipeline.SourceImage{
		Width:  200,
		Height: 100,
		Format: pipeline.FormatPNG,
		Pixels: testutil.HalfTransparentImage(200, 100, blue),
	}

	canvas, g, err := pipeline.Square(src, 50, nil)
	if err != nil {
		t.Fatalf("Square failed: %v", err)
	}
	if g.Width != 50 || g.Height != 25 {
		t.Fatalf("expected 50x25 fit, got %dx%d", g.Width, g.Height)
	}
	if canvas.Image.Bounds() != image.Rect(0, 0, 50, 50) {
		t.Fatalf("expected 50x50 canvas, got %v", canvas.Image.Bounds())
	}
	if canvas.Footprint != image.Rect(0, 12, 50, 37) {
		t.Fatalf("unexpected footprint %v", canvas.Footprint)
	}

	// padding rows
	for _, y := range []int{0, 11, 37, 49} {
		if got := canvas.Image.NRGBAAt(25, y); got != white {
			t.Fatalf("padding (25,%d) = %v, want white", y, got)
		}
	}
	// transparent half of the content shows the background
	if got := canvas.Image.NRGBAAt(5, 25); got != white {
		t.Fatalf("transparent content = %v, want white", got)
	}
	// opaque half of the content stays on top
	if got := canvas.Image.NRGBAAt(45, 25); got != blue {
		t.Fatalf("opaque content = %v, want blue", got)
	}
}

func TestSquare_SquareJPEGNoPadding(t *testing.T) {
	src := &pipeline.SourceImage{
		Width:  100,
		Height: 100,
		Format: pipeline.FormatJPEG,
		Pixels: testutil.GradientImage(100, 100),
	}
	canvas, g, err := pipeline.Square(src, 50, nil)
	if err != nil {
		t.Fatalf("Square failed: %v", err)
	}
	if g.Width != 50 || g.Height != 50 {
		t.Fatalf("square source should fill the canvas, got %dx%d", g.Width, g.Height)
	}
	if canvas.Footprint != canvas.Image.Bounds() {
		t.Fatalf("footprint should cover the canvas, got %v", canvas.Footprint)
	}
	resized := pipeline.Resample(src, g)
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			want := color.NRGBAModel.Convert(resized.At(x, y)).(color.NRGBA)
			if got := canvas.Image.NRGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want resized %v", x, y, got, want)
			}
		}
	}
}

func TestSquare_TallJPEGFootprintMatchesResized(t *testing.T) {
	src := &pipeline.SourceImage{
		Width:  60,
		Height: 120,
		Format: pipeline.FormatJPEG,
		Pixels: testutil.GradientImage(60, 120),
	}
	canvas, g, err := pipeline.Square(src, 41, nil)
	if err != nil {
		t.Fatalf("Square failed: %v", err)
	}
	// 20.5 rounds to 21, delta 20 split evenly
	if g.Width != 21 || g.Height != 41 {
		t.Fatalf("expected 21x41, got %dx%d", g.Width, g.Height)
	}
	if canvas.Footprint != image.Rect(10, 0, 31, 41) {
		t.Fatalf("unexpected footprint %v", canvas.Footprint)
	}
	resized := pipeline.Resample(src, g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			want := color.NRGBAModel.Convert(resized.At(x, y)).(color.NRGBA)
			if got := canvas.Image.NRGBAAt(x+10, y); got != want {
				t.Fatalf("content (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	for y := 0; y < 41; y++ {
		for _, x := range []int{0, 9, 31, 40} {
			if got := canvas.Image.NRGBAAt(x, y); got != white {
				t.Fatalf("border (%d,%d) = %v, want white", x, y, got)
			}
		}
	}
}

func TestProcess_PNGRoundTrip(t *testing.T) {
	in := bytes.NewReader(testutil.EncodePNG(t, testutil.HalfTransparentImage(80, 40, blue)))
	var out bytes.Buffer

	p, err := pipeline.Process(in, &out, "png", pipeline.Options{Target: 20})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if p.Source != pipeline.FormatPNG || p.Ext != "png" {
		t.Fatalf("unexpected source/ext %s/%s", p.Source, p.Ext)
	}
	if left, top := p.Geometry.Padding(); left != 0 || top != 5 || p.Canvas.Footprint.Min != image.Pt(left, top) {
		t.Fatalf("footprint %v does not match padding (%d,%d)", p.Canvas.Footprint, left, top)
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
		t.Fatalf("expected 20x20 output, got %v", img.Bounds())
	}
	// top padding and transparent content both render white
	for _, p := range []image.Point{{10, 0}, {1, 10}} {
		if got := color.NRGBAModel.Convert(img.At(p.X, p.Y)).(color.NRGBA); got != white {
			t.Fatalf("pixel %v = %v, want white", p, got)
		}
	}
}

func TestProcess_FollowsSourceFormat(t *testing.T) {
	jpg := testutil.EncodeJPEG(t, testutil.GradientImage(30, 10))
	var out bytes.Buffer

	p, err := pipeline.Process(bytes.NewReader(jpg), &out, "", pipeline.Options{Target: 12})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if p.Ext != "jpg" || p.Source.ContentType() != "image/jpeg" {
		t.Fatalf("expected jpeg output, got ext %q type %q", p.Ext, p.Source.ContentType())
	}
	img, format, err := image.Decode(&out)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" || img.Bounds() != image.Rect(0, 0, 12, 12) {
		t.Fatalf("unexpected output %s %v", format, img.Bounds())
	}
}

func TestProcess_Errors(t *testing.T) {
	jpg := testutil.EncodeJPEG(t, testutil.GradientImage(10, 10))

	tests := []struct {
		name   string
		in     []byte
		ext    string
		target int
		stage  pipeline.Stage
		want   error
	}{
		{"unsupported extension", jpg, "webp", 5, pipeline.StageEncode, pipeline.ErrUnsupportedExtension},
		{"not an image", []byte("nope"), "jpg", 5, pipeline.StageDecode, pipeline.ErrNotAnImage},
		{"zero target", jpg, "jpg", 0, pipeline.StageSquare, pipeline.ErrInvalidDimensions},
		{"target above max", jpg, "jpg", pipeline.MaxDimension + 1, pipeline.StageSquare, pipeline.ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := pipeline.Process(bytes.NewReader(tt.in), &out, tt.ext, pipeline.Options{Target: tt.target})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var se *pipeline.StageError
			if !errors.As(err, &se) || se.Stage != tt.stage {
				t.Fatalf("expected stage %s, got %v", tt.stage, err)
			}
			if out.Len() != 0 {
				t.Fatalf("nothing should be written on failure, got %d bytes", out.Len())
			}
		})
	}
}
