package exporters

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrlokans/koreader-highlights/internal/entities"
	"github.com/mrlokans/koreader-highlights/internal/services"
	"github.com/mrlokans/koreader-highlights/internal/utils"
)

// MarkdownExporter writes one markdown note per book into OutputDir.
type MarkdownExporter struct {
	OutputDir string
	now       func() time.Time
}

func NewMarkdownExporter(outputDir string) *MarkdownExporter {
	return &MarkdownExporter{
		OutputDir: outputDir,
		now:       time.Now,
	}
}

// BookPath returns the file a book is exported to.
func (exporter *MarkdownExporter) BookPath(book entities.BookData) string {
	return filepath.Join(exporter.OutputDir, utils.SanitizeFilename(book.Title)+".md")
}

// Export writes every book, replacing earlier exports of the same title.
// A book that fails to write is counted in BooksFailed and skipped.
func (exporter *MarkdownExporter) Export(books []entities.BookData) (services.ExportResult, error) {
	var result services.ExportResult

	if err := os.MkdirAll(exporter.OutputDir, 0755); err != nil {
		return result, fmt.Errorf("failed to create export directory: %w", err)
	}

	for _, book := range books {
		outputPath := exporter.BookPath(book)
		content := GenerateMarkdown(book, exporter.now())

		if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
			slog.Warn("Failed to export book", slog.String("title", book.Title), slog.String("error", err.Error()))
			result.BooksFailed++
			continue
		}

		slog.Debug("Exported book", slog.String("title", book.Title), slog.String("path", outputPath))
		result.BooksProcessed++
		result.HighlightsProcessed += len(book.Highlights)
	}

	return result, nil
}

// GenerateMarkdown renders a book as front matter followed by one quote
// block per highlight.
func GenerateMarkdown(book entities.BookData, exportedAt time.Time) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_source: koreader\n")
	fmt.Fprintf(&builder, "content_type: book_highlights\n")
	fmt.Fprintf(&builder, "created_at: %s\n", exportedAt.Format(entities.DateLayout))
	fmt.Fprintf(&builder, "title: \"%s\"\n", escapeQuotes(book.Title))
	fmt.Fprintf(&builder, "author: \"%s\"\n", escapeQuotes(book.Author))
	fmt.Fprintf(&builder, "tags: [highlights, books]\n")
	fmt.Fprintf(&builder, "---\n\n")
	fmt.Fprintf(&builder, "## Highlights\n\n")

	for _, highlight := range book.Highlights {
		fmt.Fprintf(&builder, "### %s\n\n", highlightHeading(highlight))
		fmt.Fprintf(&builder, "> %s\n\n", strings.ReplaceAll(highlight.Text, "\n", "\n> "))
		if highlight.Note != nil && *highlight.Note != "" {
			fmt.Fprintf(&builder, "**Note:** %s\n\n", *highlight.Note)
		}
	}

	return builder.String()
}

func highlightHeading(h entities.Highlight) string {
	parts := []string{h.Datetime.Format("2006-01-02 15:04")}
	if chapter := h.ChapterOrEmpty(); chapter != "" {
		parts = append(parts, chapter)
	}
	if h.Page > 0 {
		parts = append(parts, fmt.Sprintf("p. %d", h.Page))
	}
	return strings.Join(parts, " · ")
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}
