package main

import (
	"errors"

	"github.com/spf13/cobra"

	"squarefit/internal/config"
	"squarefit/internal/journal"
	"squarefit/internal/ui"
)

// errReported marks a failure that was already shown to the user.
var errReported = errors.New("reported")

type app struct {
	configPath  string
	journalPath string
	cfg         *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "squarefit",
		Short: "Pad images onto fixed-size square canvases",
		Long: ui.FormatTitle("squarefit") + " - square image normalizer\n\n" +
			"Scales every jpg/jpeg/png in a folder to fit a square of the chosen\n" +
			"size and pads the rest with a solid background.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.journalPath, "journal", "", "SQLite run journal (overrides SQUAREFIT_JOURNAL)")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newHistoryCmd(a))
	return root
}

func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("journal") {
		cfg.JournalPath = a.journalPath
	}
	a.cfg = cfg
	return nil
}

// openJournal opens the configured journal, or returns nil when none is
// configured.
func (a *app) openJournal() (*journal.Journal, error) {
	if a.cfg.JournalPath == "" {
		return nil, nil
	}
	return journal.Open(a.cfg.JournalPath)
}
