package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrlokans/koreader-highlights/internal/config"
	"github.com/mrlokans/koreader-highlights/internal/database"
	"github.com/mrlokans/koreader-highlights/internal/entities"
	"github.com/mrlokans/koreader-highlights/internal/exporters"
	"github.com/mrlokans/koreader-highlights/internal/importers"
	"github.com/mrlokans/koreader-highlights/internal/koreader"
	"github.com/mrlokans/koreader-highlights/internal/services"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import highlights from the selected date range once",
		Long: `Scan the library, keep the highlights made in the selected date range
and store the new ones in the database.

Examples:
  koreader-highlights import                          Current week up to yesterday
  koreader-highlights import --last 7                 The 7 days before today
  koreader-highlights import --from 2026-01-01 --to 2026-01-31
  koreader-highlights import -b /media/KOBOeReader -o ~/Obsidian/Highlights
  koreader-highlights import --dry-run -v             Preview without writing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd)
		},
	}
}

func (a *app) runImport(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger := a.setupLogger(cfg)

	dateRange, err := config.ResolveDateRange(a.dates, a.now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, cfg, dateRange, a.dryRun)

	var db *database.Database
	if !a.dryRun {
		db, err = database.NewDatabase(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	result, err := importOnce(cmd.Context(), cfg, db, dateRange, logger)
	if err != nil {
		return err
	}

	printSummary(out, result, a.dryRun)
	return nil
}

// importOnce discovers the metadata files and runs the pipeline over them.
// A nil db runs the pipeline without saving or exporting.
func importOnce(ctx context.Context, cfg *config.Config, db *database.Database, dateRange entities.DateRange, logger *slog.Logger) (importers.ImportResult, error) {
	files, err := koreader.FindMetadataFiles(cfg.Books.Path, cfg.Books.MetadataFileName)
	if err != nil {
		return importers.ImportResult{}, fmt.Errorf("failed to scan books path: %w", err)
	}
	logger.Debug("Discovered metadata files", slog.String("root", cfg.Books.Path), slog.Int("count", len(files)))

	opts := []importers.Option{
		importers.WithLogger(logger),
		importers.WithWorkers(cfg.Extract.Workers),
	}
	// A nil *Database must not end up in a non-nil interface.
	var store services.HighlightStore
	if db != nil {
		store = db
		if cfg.Markdown.OutputDir != "" {
			markdown := exporters.NewMarkdownExporter(cfg.Markdown.OutputDir)
			opts = append(opts, importers.WithExporter(exporters.NewPendingExporter(db, markdown)))
		}
	}

	return importers.NewPipeline(store, opts...).Run(ctx, files, dateRange)
}

func printHeader(out io.Writer, cfg *config.Config, dateRange entities.DateRange, dryRun bool) {
	fmt.Fprintln(out, color.CyanString("KOReader Highlights Import"))
	fmt.Fprintln(out, color.CyanString("=========================="))
	if dryRun {
		fmt.Fprintln(out, color.YellowString("DRY RUN MODE - No changes will be made"))
	}
	fmt.Fprintf(out, "Books path: %s\n", cfg.Books.Path)
	fmt.Fprintf(out, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintf(out, "From: %s\n", dateRange.From.Format(entities.DateLayout))
	fmt.Fprintf(out, "To: %s\n", dateRange.To.Format(entities.DateLayout))
	fmt.Fprintln(out)
}

func printSummary(out io.Writer, result importers.ImportResult, dryRun bool) {
	for _, book := range result.Books {
		if dryRun {
			fmt.Fprintf(out, "%s %s by %s: %d highlights\n",
				color.GreenString("✓"), book.Title, book.Author, book.InRange)
			continue
		}
		fmt.Fprintf(out, "%s %s by %s: %d new, %d already stored\n",
			color.GreenString("✓"), book.Title, book.Author, book.Inserted, book.Duplicate)
	}

	for _, failure := range result.Failures {
		fmt.Fprintf(out, "%s %s: %v\n", color.YellowString("!"), failure.Path, failure.Err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, color.CyanString("Summary"))
	fmt.Fprintf(out, "  Files scanned:       %d\n", result.FilesScanned)
	fmt.Fprintf(out, "  Files failed:        %d\n", result.FilesFailed)
	fmt.Fprintf(out, "  Books with matches:  %d\n", result.BooksMatched)
	fmt.Fprintf(out, "  Highlights in range: %d\n", result.HighlightsInRange)
	if !dryRun {
		fmt.Fprintf(out, "  New highlights:      %d\n", result.Inserted)
		fmt.Fprintf(out, "  Already stored:      %d\n", result.Ignored)
	}
	if result.Export != nil {
		fmt.Fprintf(out, "  Exported books:      %d\n", result.Export.BooksProcessed)
		if result.Export.BooksFailed > 0 {
			fmt.Fprintf(out, "  Failed exports:      %d\n", result.Export.BooksFailed)
		}
	}
}
