package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrlokans/koreader-highlights/internal/database"
	"github.com/mrlokans/koreader-highlights/internal/exporters"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export books with not yet exported highlights to markdown",
		Long: `Write one markdown note per book that gained highlights since the last
export. Each note holds every stored highlight of the book. Exported
highlights are marked processed in the database.

Examples:
  koreader-highlights export -o ~/Obsidian/Highlights
  MARKDOWN_OUTPUT_DIR=~/Obsidian/Highlights koreader-highlights export`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			a.setupLogger(cfg)

			if cfg.Markdown.OutputDir == "" {
				return fmt.Errorf("no output directory: pass --output or set MARKDOWN_OUTPUT_DIR")
			}

			db, err := database.NewDatabase(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			exporter := exporters.NewPendingExporter(db, exporters.NewMarkdownExporter(cfg.Markdown.OutputDir))
			result, err := exporter.ExportPending()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Exported %d books (%d highlights) to %s\n",
				color.GreenString("✓"), result.BooksProcessed, result.HighlightsProcessed, cfg.Markdown.OutputDir)
			if result.BooksFailed > 0 {
				fmt.Fprintf(out, "%s %d books failed and stay pending\n", color.YellowString("!"), result.BooksFailed)
			}
			return nil
		},
	}
}
