package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"squarefit/internal/journal"
	"squarefit/internal/ui"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs from the journal",
		Long: `List recent batch runs recorded in the journal, or the per-file
outcomes of one run.

Examples:
  squarefit history --journal runs.db
  squarefit history 3 --journal runs.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			if j == nil {
				return fmt.Errorf("no journal configured: pass --journal or set SQUAREFIT_JOURNAL")
			}
			defer j.Close()

			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid run id %q", args[0])
				}
				return showRun(cmd, j, id)
			}
			return listRuns(cmd, j, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	return cmd
}

func listRuns(cmd *cobra.Command, j *journal.Journal, limit int) error {
	out := cmd.OutOrStdout()
	runs, err := j.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, ui.FormatInfo("No runs recorded yet."))
		return nil
	}

	tbl := ui.NewTable(
		ui.TableColumn{Header: "ID", Align: ui.AlignRight},
		ui.TableColumn{Header: "Started"},
		ui.TableColumn{Header: "Target", Align: ui.AlignRight},
		ui.TableColumn{Header: "OK", Align: ui.AlignRight},
		ui.TableColumn{Header: "Failed", Align: ui.AlignRight},
		ui.TableColumn{Header: "Input"},
	)
	for _, r := range runs {
		tbl.AddRow(
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Local().Format(time.DateTime),
			strconv.Itoa(r.Target),
			strconv.Itoa(r.Processed),
			strconv.Itoa(r.Failed),
			r.InputFolder,
		)
	}
	fmt.Fprint(out, tbl.Render())
	return nil
}

func showRun(cmd *cobra.Command, j *journal.Journal, id int64) error {
	out := cmd.OutOrStdout()
	run, err := j.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	files, err := j.RunFiles(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ui.RenderKeyValue("Run", strconv.FormatInt(run.ID, 10)))
	fmt.Fprintln(out, ui.RenderKeyValue("Output", run.OutputDir))
	fmt.Fprintln(out, ui.RenderKeyValue("Target", strconv.Itoa(run.Target)))
	fmt.Fprintln(out)

	tbl := ui.NewTable(
		ui.TableColumn{Header: "Status"},
		ui.TableColumn{Header: "Source"},
		ui.TableColumn{Header: "Detail"},
	)
	for _, f := range files {
		detail := f.Output
		if f.Status == journal.StatusFailed {
			detail = f.Stage + ": " + f.ErrorMessage
		}
		tbl.AddRow(f.Status, f.Source, detail)
	}
	fmt.Fprint(out, tbl.Render())
	return nil
}
