package exporters

import (
	"fmt"
	"log/slog"

	"github.com/mrlokans/koreader-highlights/internal/entities"
	"github.com/mrlokans/koreader-highlights/internal/services"
)

// PendingExporter exports the books that gained highlights since the last
// export. Each exported book carries all of its stored highlights, so a
// book's note is always complete.
type PendingExporter struct {
	store    services.PendingHighlightStore
	exporter services.BookExporter
}

func NewPendingExporter(store services.PendingHighlightStore, exporter services.BookExporter) *PendingExporter {
	return &PendingExporter{
		store:    store,
		exporter: exporter,
	}
}

// ExportPending exports every book with unprocessed highlights and marks
// those highlights processed. Rows of a book that failed to export stay
// pending for the next run.
func (e *PendingExporter) ExportPending() (services.ExportResult, error) {
	var result services.ExportResult

	pending, err := e.store.GetUnprocessed()
	if err != nil {
		return result, fmt.Errorf("failed to load pending highlights: %w", err)
	}

	titles, idsByTitle := groupByTitle(pending)

	for _, title := range titles {
		book, err := e.loadBook(title)
		if err != nil {
			return result, err
		}

		exported, err := e.exporter.Export([]entities.BookData{book})
		if err != nil {
			return result, fmt.Errorf("failed to export %q: %w", title, err)
		}
		result.BooksFailed += exported.BooksFailed
		if exported.BooksProcessed == 0 {
			slog.Warn("Book left pending", slog.String("title", title))
			continue
		}

		if err := e.store.MarkProcessed(idsByTitle[title]); err != nil {
			return result, fmt.Errorf("failed to mark highlights of %q as exported: %w", title, err)
		}
		result.BooksProcessed += exported.BooksProcessed
		result.HighlightsProcessed += exported.HighlightsProcessed
	}

	return result, nil
}

func (e *PendingExporter) loadBook(title string) (entities.BookData, error) {
	rows, err := e.store.GetHighlightsByBook(title)
	if err != nil {
		return entities.BookData{}, fmt.Errorf("failed to load highlights of %q: %w", title, err)
	}

	book := entities.BookData{Title: title, Author: entities.DefaultAuthor}
	for _, row := range rows {
		h, err := row.Highlight()
		if err != nil {
			return entities.BookData{}, err
		}
		// Rows come ordered by datetime, the latest author wins.
		book.Author = row.BookAuthor
		book.Highlights = append(book.Highlights, h)
	}
	return book, nil
}

// groupByTitle returns the distinct titles in first-seen order with the ids
// of their rows.
func groupByTitle(rows []entities.StoredHighlight) ([]string, map[string][]uint) {
	var titles []string
	ids := make(map[string][]uint)
	for _, row := range rows {
		if _, seen := ids[row.BookTitle]; !seen {
			titles = append(titles, row.BookTitle)
		}
		ids[row.BookTitle] = append(ids[row.BookTitle], row.ID)
	}
	return titles, ids
}
