package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"squarefit/internal/batch"
	"squarefit/internal/config"
	"squarefit/internal/ui"
)

const (
	msgInvalidTarget = "Invalid target resolution. Please enter a valid positive number."
	msgNoInput       = "No image files found in the selected folder."
	msgCompleted     = "Script completed!"
	msgInterrupted   = "Run interrupted; remaining files were skipped."
)

type runOptions struct {
	target     string
	out        string
	workers    int
	background string
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [folder]",
		Short: "Square every image in a folder",
		Long: `Square every jpg, jpeg and png directly inside a folder.

Outputs go to <out>/processedImages_<T>X<T>/<name>_<T>x<T>.<ext>.
The folder and target are prompted for when not given.

Examples:
  squarefit run ~/photos --target 1200
  squarefit run ~/photos --out /tmp/square --workers 4
  squarefit run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "square size in pixels (prompted when omitted)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "parent of the output directory (default: the input folder)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent workers (default from config)")
	cmd.Flags().StringVarP(&opts.background, "background", "b", "", "padding color as #rrggbb (default from config)")
	return cmd
}

func (a *app) run(cmd *cobra.Command, opts *runOptions, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	folder := ""
	if len(args) == 1 {
		folder = args[0]
	} else {
		var err error
		if folder, err = prompt(in, out, "Select the folder containing images", ""); err != nil {
			return err
		}
	}
	if folder == "" {
		fmt.Fprintln(out, ui.FormatWarning("No folder selected."))
		return nil
	}

	rawTarget := opts.target
	if !cmd.Flags().Changed("target") {
		var err error
		rawTarget, err = prompt(in, out, "Enter target resolution (e.g., 2000)", strconv.Itoa(a.targetDefault()))
		if err != nil {
			return err
		}
	}
	target, err := config.ParseTarget(rawTarget)
	if err != nil {
		fmt.Fprintln(out, ui.FormatError(msgInvalidTarget))
		return errReported
	}

	background := a.cfg.Background
	if opts.background != "" {
		background = opts.background
	}
	bg, err := config.ParseColor(background)
	if err != nil {
		return err
	}

	workers := a.cfg.Workers
	if cmd.Flags().Changed("workers") {
		workers = opts.workers
	}

	outFolder := opts.out
	if outFolder == "" {
		outFolder = folder
	}

	runnerOpts := batch.Options{
		Workers:    workers,
		Background: bg,
		MaxBytes:   a.cfg.MaxBytes,
	}
	j, err := a.openJournal()
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
		runnerOpts.Recorder = j
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := batch.NewRunner(runnerOpts).RunFolder(ctx, folder, outFolder, target)
	if errors.Is(err, batch.ErrNoInput) {
		fmt.Fprintln(out, ui.FormatWarning(msgNoInput))
		return nil
	}
	switch {
	case batch.IsFatal(err):
		fmt.Fprintln(out, ui.FormatError(err.Error()))
		return errReported
	case err != nil && report != nil:
		// interrupted: show what was done before stopping
		printReport(out, report, ui.FormatWarning(msgInterrupted))
		return errReported
	case err != nil:
		return err
	}

	printReport(out, report, ui.FormatSuccess(msgCompleted))
	return nil
}

// targetDefault is the configured target, or the built-in default when the
// configured one is unusable.
func (a *app) targetDefault() int {
	if a.cfg.Target > 0 {
		return a.cfg.Target
	}
	return config.DefaultTarget
}

func printReport(w io.Writer, report *batch.Report, headline string) {
	fmt.Fprintln(w, headline)
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.RenderKeyValue("Output", report.OutputDir))
	fmt.Fprintln(w, ui.RenderKeyValue("Processed", ui.StyleSuccess.Render(strconv.Itoa(len(report.Processed)))))
	if len(report.Failed) > 0 {
		fmt.Fprintln(w, ui.RenderKeyValue("Failed", ui.StyleError.Render(strconv.Itoa(len(report.Failed)))))
		for _, f := range report.Failed {
			fmt.Fprintf(w, "  %s %s\n", ui.StyleError.Render(ui.IconError), f.Error())
		}
	}
	fmt.Fprintln(w, ui.FormatMuted("took "+report.Duration.Round(time.Millisecond).String()))
}
