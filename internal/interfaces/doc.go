// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - HighlightStore: Persist a book's highlights, skipping ones already stored
//     (internal/services/interfaces.go)
//
// ## Export Interfaces
//
//   - BookExporter: Render books to an external format (internal/services/interfaces.go)
//
// # Adding a New Export Target
//
// To also push imported highlights somewhere else (e.g. a JSON feed):
//
//  1. Implement BookExporter in internal/exporters/
//
//     type JSONExporter struct {
//         OutputPath string
//     }
//
//     func (e *JSONExporter) Export(books []entities.BookData) (services.ExportResult, error)
//
//  2. Pass it to the pipeline with importers.WithExporter in internal/cli/import.go
//
//  3. Add a compile-time check to checks.go
//
// # Adding a New Store
//
// The pipeline only needs SaveBookHighlights. A store must report how many
// highlights were inserted and how many were already present under the same
// (book title, page, text) key:
//
//	func (s *MyStore) SaveBookHighlights(book *entities.BookData, highlights []entities.Highlight) (services.SaveResult, error)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
