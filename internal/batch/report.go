package batch

import (
	"errors"
	"fmt"
	"time"

	"squarefit/internal/pipeline"
)

var (
	// ErrNoInput is returned when the input folder holds no matching files.
	ErrNoInput = errors.New("no image files found in the selected folder")
	// ErrOutputDir is fatal: no file can be written without the directory.
	ErrOutputDir = errors.New("cannot create output directory")
)

// Stage names the pipeline step a file failed at.
type Stage string

const (
	StageInput  Stage = "input"
	StageDecode = Stage(pipeline.StageDecode)
	StageSquare = Stage(pipeline.StageSquare)
	StageEncode = Stage(pipeline.StageEncode)
	StageWrite  Stage = "write"
)

// FileError is a per-file failure. It never stops the batch.
type FileError struct {
	Source string
	Stage  Stage
	Err    error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Result is a successfully written output.
type Result struct {
	Source string
	Output string
	Width  int
	Height int
}

// Report summarises a batch run.
type Report struct {
	Target    int
	OutputDir string
	Processed []Result
	Failed    []*FileError
	Duration  time.Duration
}

// Total is the number of files the batch attempted.
func (r *Report) Total() int {
	return len(r.Processed) + len(r.Failed)
}

// OK reports whether every attempted file was written.
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}
