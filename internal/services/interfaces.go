package services

import "github.com/mrlokans/koreader-highlights/internal/entities"

// HighlightStore persists the in-range highlights of a book.
// Use this interface when you only need to write highlights.
type HighlightStore interface {
	SaveBookHighlights(book *entities.BookData, highlights []entities.Highlight) (SaveResult, error)
}

// PendingHighlightStore gives access to stored highlights that no export
// has picked up yet.
type PendingHighlightStore interface {
	GetUnprocessed() ([]entities.StoredHighlight, error)
	GetHighlightsByBook(title string) ([]entities.StoredHighlight, error)
	MarkProcessed(ids []uint) error
}

// BookExporter renders books to an external format (e.g. markdown files).
type BookExporter interface {
	Export(books []entities.BookData) (ExportResult, error)
}

// PendingBookExporter exports every book that gained stored highlights
// since the last export.
type PendingBookExporter interface {
	ExportPending() (ExportResult, error)
}

// SaveResult contains the outcome of persisting one book's highlights.
type SaveResult struct {
	Inserted int
	Ignored  int // already stored under the same (title, page, text)
}

// ExportResult contains the outcome of an export operation.
type ExportResult struct {
	BooksProcessed      int
	HighlightsProcessed int
	BooksFailed         int
}
