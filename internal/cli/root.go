package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrlokans/koreader-highlights/internal/config"
)

// Version information, filled in by main
var (
	Version = "dev"
	Commit  = "unknown"
)

type app struct {
	v        *viper.Viper
	dates    config.DateOptions
	lastDays int
	dryRun   bool
	verbose  bool
	noColor  bool
	now      func() time.Time
}

func newApp() *app {
	return &app{
		v:   config.NewViper(),
		now: time.Now,
	}
}

// Execute is the entry point called from main.
func Execute() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "koreader-highlights",
		Short: "Import KOReader highlights into a local SQLite database",
		Long: `koreader-highlights scans a KOReader library for metadata.epub.lua
sidecar files, keeps the highlights made in the selected date range and
stores them in a local SQLite database. Highlights already stored are
skipped, so runs can be repeated safely.

Running it without a subcommand is the same as 'koreader-highlights import'.

Date selection (default: current week from Sunday to yesterday):
  --from 2026-01-01               From a date until yesterday
  --from 2026-01-01 --to 2026-01-31
  --last 7                        The 7 days before today`,
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringP("books-path", "b", config.DefaultBooksPath, "Root directory of the KOReader library")
	flags.StringP("database-path", "d", config.DefaultDatabasePath, "Path to the SQLite database file")
	flags.StringP("output", "o", "", "Also export books with new highlights as markdown into this directory")
	flags.Int("workers", config.DefaultExtractWorkers, "Number of metadata files parsed concurrently")
	flags.StringVar(&a.dates.From, "from", "", "Start date (YYYY-MM-DD)")
	flags.StringVar(&a.dates.To, "to", "", "End date (YYYY-MM-DD), requires --from")
	flags.IntVarP(&a.lastDays, "last", "l", 0, "Import the last N days, excluding today")
	flags.BoolVar(&a.dryRun, "dry-run", false, "Show what would be imported without writing the database")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	// Flags only override the environment when set explicitly.
	_ = a.v.BindPFlag("books_path", flags.Lookup("books-path"))
	_ = a.v.BindPFlag("database_path", flags.Lookup("database-path"))
	_ = a.v.BindPFlag("markdown_output_dir", flags.Lookup("output"))
	_ = a.v.BindPFlag("extract_workers", flags.Lookup("workers"))

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if a.noColor || !isTTY() {
			color.NoColor = true
		}
		// --last 0 is a value, not an absent flag.
		if cmd.Flags().Changed("last") {
			n := a.lastDays
			a.dates.LastDays = &n
		}
	}

	cmd.AddCommand(
		newImportCmd(a),
		newExportCmd(a),
		newScheduleCmd(a),
	)

	return cmd
}

func (a *app) loadConfig() (*config.Config, error) {
	cfg := config.Load(a.v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if a.verbose {
		cfg.Logging.Level = slog.LevelDebug
	}
	return cfg, nil
}

func (a *app) setupLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Logging.Level}))
	slog.SetDefault(logger)
	return logger
}

func isTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
