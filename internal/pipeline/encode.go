package pipeline

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"

	"github.com/disintegration/imaging"
)

// MaxJPEGQuality is the fixed quality used for lossy output.
const MaxJPEGQuality = 100

// ErrUnsupportedExtension is returned for output extensions other than
// jpg, jpeg and png.
var ErrUnsupportedExtension = errors.New("unsupported output extension")

// OutputFormat maps a file extension (with or without the dot, any case)
// to the encoder format.
func OutputFormat(ext string) (imaging.Format, error) {
	f, err := imaging.FormatFromExtension(ext)
	if err != nil || (f != imaging.JPEG && f != imaging.PNG) {
		return 0, fmt.Errorf("%q: %w", ext, ErrUnsupportedExtension)
	}
	return f, nil
}

// Encode writes img to w in the format named by ext. JPEG output uses
// MaxJPEGQuality; PNG output is lossless.
func Encode(img image.Image, w io.Writer, ext string) error {
	if img == nil {
		return errors.New("nil image")
	}
	if w == nil {
		return errors.New("nil writer")
	}
	format, err := OutputFormat(ext)
	if err != nil {
		return err
	}

	// counting writer to capture encoded size
	c := &countingWriter{w: w}
	err = imaging.Encode(c, img, format,
		imaging.JPEGQuality(MaxJPEGQuality),
		imaging.PNGCompressionLevel(png.BestCompression),
	)
	if err != nil {
		return err
	}

	log.Printf("%s encoded size=%d", format, c.n)
	return nil
}

// countingWriter wraps an io.Writer and counts bytes written.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	m, err := c.w.Write(p)
	c.n += int64(m)
	return m, err
}
