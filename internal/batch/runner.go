package batch

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"squarefit/internal/config"
	"squarefit/internal/journal"
	"squarefit/internal/pipeline"
	"squarefit/internal/storage"
)

// DefaultTempMaxAge is how old a leftover temp file in the output directory
// must be before a new run removes it.
const DefaultTempMaxAge = time.Hour

// Recorder receives run and per-file outcomes. *journal.Journal implements it.
type Recorder interface {
	StartRun(ctx context.Context, inputFolder, outputDir string, target int) (int64, error)
	RecordFile(ctx context.Context, runID int64, rec journal.FileRecord) error
	FinishRun(ctx context.Context, runID int64, processed, failed int) error
}

// Options configure a Runner.
type Options struct {
	// Workers > 1 processes files concurrently; 0 or 1 is sequential.
	Workers    int
	Background color.Color
	MaxBytes   int64
	TempMaxAge time.Duration
	// Recorder is optional.
	Recorder Recorder
}

// Runner drives the square pipeline over a list of files.
type Runner struct {
	opts Options
}

// NewRunner creates a Runner, filling unset options with defaults.
func NewRunner(opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Background == nil {
		opts.Background = pipeline.DefaultBackground
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = pipeline.DefaultMaxBytes
	}
	if opts.TempMaxAge <= 0 {
		opts.TempMaxAge = DefaultTempMaxAge
	}
	return &Runner{opts: opts}
}

// RunFolder lists the images directly inside inputFolder and runs them.
// It returns ErrNoInput when there is nothing to do.
func (r *Runner) RunFolder(ctx context.Context, inputFolder, outputFolder string, target int) (*Report, error) {
	if err := config.ValidateTarget(target); err != nil {
		return nil, err
	}
	files, err := storage.ListImages(inputFolder)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoInput
	}
	return r.run(ctx, inputFolder, files, outputFolder, target)
}

// Run processes files in the given order and writes the outputs under
// outputFolder. Per-file failures are collected in the report; only an
// invalid target, an unusable output directory or cancellation return an
// error.
func (r *Runner) Run(ctx context.Context, files []string, outputFolder string, target int) (*Report, error) {
	return r.run(ctx, "", files, outputFolder, target)
}

func (r *Runner) run(ctx context.Context, inputFolder string, files []string, outputFolder string, target int) (*Report, error) {
	if err := config.ValidateTarget(target); err != nil {
		return nil, err
	}
	started := time.Now()

	// Created once, before any file work starts
	store := storage.New(outputFolder)
	dir, err := store.EnsureOutputDir(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	if n, err := storage.CleanOrphanedTempFiles(dir, r.opts.TempMaxAge); err != nil {
		log.Printf("Batch: temp cleanup in %s failed: %v", dir, err)
	} else if n > 0 {
		log.Printf("Batch: removed %d stale temp files from %s", n, dir)
	}

	runID := r.startRun(ctx, inputFolder, dir, target)

	log.Printf("Batch: processing %d files into %s (workers=%d)", len(files), dir, r.opts.Workers)

	outcomes := make([]*outcome, len(files))
	if r.opts.Workers == 1 || len(files) < 2 {
		for i, f := range files {
			if ctx.Err() != nil {
				break
			}
			outcomes[i] = r.processFile(store, f, target)
			r.record(ctx, runID, outcomes[i])
		}
	} else {
		r.runPool(ctx, runID, store, files, target, outcomes)
	}

	report := &Report{Target: target, OutputDir: dir}
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		if o.err != nil {
			report.Failed = append(report.Failed, o.err)
		} else {
			report.Processed = append(report.Processed, o.result)
		}
	}
	report.Duration = time.Since(started)

	r.finishRun(ctx, runID, report)
	log.Printf("Batch: done processed=%d failed=%d in %s", len(report.Processed), len(report.Failed), report.Duration.Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// runPool fans files out to Workers goroutines. Each file owns its slot in
// outcomes, so no locking is needed for results.
func (r *Runner) runPool(ctx context.Context, runID int64, store *storage.Storage, files []string, target int, outcomes []*outcome) {
	jobs := make(chan int)
	var wg sync.WaitGroup
	var recMu sync.Mutex

	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				o := r.processFile(store, files[i], target)
				outcomes[i] = o
				recMu.Lock()
				r.record(ctx, runID, o)
				recMu.Unlock()
			}
		}()
	}

feed:
	for i := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
}

type outcome struct {
	result Result
	err    *FileError
}

func (r *Runner) processFile(store *storage.Storage, path string, target int) *outcome {
	log.Printf("Batch: processing %s", path)
	out := store.Output(path, target)

	fail := func(stage Stage, err error) *outcome {
		log.Printf("Batch: %s failed at %s: %v", path, stage, err)
		return &outcome{err: &FileError{Source: path, Stage: stage, Err: err}}
	}

	if _, err := pipeline.OutputFormat(out.Ext); err != nil {
		return fail(StageInput, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fail(StageDecode, fmt.Errorf("open image: %w", err))
	}
	defer f.Close()

	opts := pipeline.Options{Target: target, Background: r.opts.Background, MaxBytes: r.opts.MaxBytes}
	var processed *pipeline.Processed
	var procErr error
	err = storage.AtomicWrite(out.Path, func(w io.Writer) error {
		processed, procErr = pipeline.Process(f, w, out.Ext, opts)
		return procErr
	})
	if err != nil {
		var se *pipeline.StageError
		if errors.As(procErr, &se) {
			return fail(Stage(se.Stage), se.Err)
		}
		return fail(StageWrite, err)
	}

	b := processed.Canvas.Image.Bounds()
	return &outcome{result: Result{Source: path, Output: out.Path, Width: b.Dx(), Height: b.Dy()}}
}

func (r *Runner) startRun(ctx context.Context, inputFolder, dir string, target int) int64 {
	if r.opts.Recorder == nil {
		return 0
	}
	id, err := r.opts.Recorder.StartRun(ctx, inputFolder, dir, target)
	if err != nil {
		log.Printf("Batch: failed to record run start: %v", err)
		return 0
	}
	return id
}

// record stores a file outcome; journal failures never fail the batch.
func (r *Runner) record(ctx context.Context, runID int64, o *outcome) {
	if r.opts.Recorder == nil || runID == 0 || o == nil {
		return
	}
	rec := journal.FileRecord{Status: journal.StatusCompleted, Source: o.result.Source, Output: o.result.Output}
	if o.err != nil {
		rec = journal.FileRecord{
			Status:       journal.StatusFailed,
			Source:       o.err.Source,
			Stage:        string(o.err.Stage),
			ErrorMessage: o.err.Err.Error(),
		}
	}
	if err := r.opts.Recorder.RecordFile(context.WithoutCancel(ctx), runID, rec); err != nil {
		log.Printf("Batch: failed to record %s: %v", rec.Source, err)
	}
}

func (r *Runner) finishRun(ctx context.Context, runID int64, report *Report) {
	if r.opts.Recorder == nil || runID == 0 {
		return
	}
	if err := r.opts.Recorder.FinishRun(context.WithoutCancel(ctx), runID, len(report.Processed), len(report.Failed)); err != nil {
		log.Printf("Batch: failed to record run end: %v", err)
	}
}

// IsFatal reports whether err aborted the batch as a whole.
func IsFatal(err error) bool {
	return errors.Is(err, ErrOutputDir) || errors.Is(err, config.ErrInvalidTarget)
}
