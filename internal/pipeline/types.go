package pipeline

import (
	"errors"
	"image"
)

var (
	ErrNotAnImage           = errors.New("file is not a supported image")
	ErrTooLarge             = errors.New("image exceeds size limit")
	ErrInvalidDimensions    = errors.New("image dimensions out of range")
	ErrContentExceedsCanvas = errors.New("content larger than target canvas")
)

// Default maximum dimension (width or height) allowed by the decoder.
const MaxDimension = 20000

// DefaultMaxBytes caps how much of a single input file is read.
const DefaultMaxBytes = 200 << 20

// Format is the decoded format tag of a source image.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// HasNativeAlpha reports whether the format can carry transparency.
func (f Format) HasNativeAlpha() bool {
	return f == FormatPNG
}

// Extension is the file extension used when output follows the source
// format.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// SourceImage is a decoded input file. It is not modified after decode.
type SourceImage struct {
	Width  int
	Height int
	Format Format
	Pixels image.Image
}

// HasNativeAlpha is derived from the format tag.
func (s *SourceImage) HasNativeAlpha() bool {
	return s.Format.HasNativeAlpha()
}

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageDecode Stage = "decode"
	StageSquare Stage = "square"
	StageEncode Stage = "encode"
)

// StageError wraps an error with the step that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }
