package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrlokans/koreader-highlights/internal/config"
	"github.com/mrlokans/koreader-highlights/internal/database"
	"github.com/mrlokans/koreader-highlights/internal/scheduler"
)

func newScheduleCmd(a *app) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Keep running and import on a cron schedule",
		Long: `Run the import periodically until interrupted. The date range is
resolved again at every run, so the default range follows the calendar.

Examples:
  koreader-highlights schedule                        Daily at 07:00
  koreader-highlights schedule --schedule "0 */6 * * *" --last 2
  koreader-highlights schedule --run-now              Import once right away too`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSchedule(cmd, runNow)
		},
	}

	cmd.Flags().String("schedule", config.DefaultSyncSchedule, "Cron schedule (5 fields: minute hour day month weekday)")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run an import immediately after starting")
	_ = a.v.BindPFlag("sync_schedule", cmd.Flags().Lookup("schedule"))

	return cmd
}

func (a *app) runSchedule(cmd *cobra.Command, runNow bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger := a.setupLogger(cfg)

	// Reject bad date options up front instead of at every tick.
	if _, err := config.ResolveDateRange(a.dates, a.now()); err != nil {
		return err
	}
	if err := scheduler.ValidateSchedule(cfg.Sync.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", cfg.Sync.Schedule, err)
	}
	if a.dryRun {
		return fmt.Errorf("--dry-run is not supported by schedule")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	syncFn := func(ctx context.Context) error {
		dateRange, err := config.ResolveDateRange(a.dates, a.now())
		if err != nil {
			return err
		}
		result, err := importOnce(ctx, cfg, db, dateRange, logger)
		if err != nil {
			return err
		}
		logger.Info("Import finished",
			slog.String("range", dateRange.String()),
			slog.Int("files", result.FilesScanned),
			slog.Int("failed", result.FilesFailed),
			slog.Int("inserted", result.Inserted),
			slog.Int("ignored", result.Ignored),
		)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scheduler.NewSyncScheduler(cfg.Sync.Schedule, syncFn, logger)
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Stop()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, color.CyanString("KOReader Highlights Scheduler"))
	fmt.Fprintf(out, "Books path: %s\n", cfg.Books.Path)
	fmt.Fprintf(out, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintf(out, "Schedule: %s (%s)\n", cfg.Sync.Schedule, scheduler.Describe(cfg.Sync.Schedule))
	if next := s.NextRunTime(); next != nil {
		fmt.Fprintf(out, "Next run: %s\n", next.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(out, "Press Ctrl+C to stop.")

	if runNow {
		if err := s.RunNow(); err != nil {
			logger.Error("Initial import failed", slog.String("error", err.Error()))
		}
	}

	<-ctx.Done()
	fmt.Fprintln(out, color.YellowString("Shutting down..."))
	return nil
}
