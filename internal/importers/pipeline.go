package importers

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/koreader-highlights/internal/entities"
	"github.com/mrlokans/koreader-highlights/internal/koreader"
	"github.com/mrlokans/koreader-highlights/internal/services"
)

// FileFailure records a metadata file that could not be read or parsed.
type FileFailure struct {
	Path string
	Err  error
}

// BookSummary describes what happened to one book during a run.
type BookSummary struct {
	Title     string
	Author    string
	Path      string
	InRange   int
	Inserted  int
	Duplicate int
}

// ImportResult contains the outcome of a pipeline run.
type ImportResult struct {
	FilesScanned      int
	FilesFailed       int
	BooksMatched      int // books with at least one highlight in range
	HighlightsInRange int
	Inserted          int
	Ignored           int
	Failures          []FileFailure
	Books             []BookSummary
	Export            *services.ExportResult
}

// Pipeline handles the import workflow:
// read → extract → filter by date → save → (optionally) export.
type Pipeline struct {
	store    services.HighlightStore
	exporter services.PendingBookExporter
	logger   *slog.Logger
	workers  int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExporter exports the books with not yet exported stored highlights
// once saving is done. Dry runs never export.
func WithExporter(exporter services.PendingBookExporter) Option {
	return func(p *Pipeline) { p.exporter = exporter }
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithWorkers sets how many files are extracted concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewPipeline creates a pipeline saving to store. A nil store makes the
// pipeline a dry run: highlights are extracted and counted, never saved.
func NewPipeline(store services.HighlightStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:   store,
		logger:  slog.Default(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type extraction struct {
	book *entities.BookData
	err  error
}

// Run processes the given metadata files. A file that cannot be read or
// parsed is logged and skipped; a storage failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, files []string, r entities.DateRange) (ImportResult, error) {
	result := ImportResult{FilesScanned: len(files)}

	extractions, err := p.extractAll(ctx, files)
	if err != nil {
		return result, err
	}

	for i, path := range files {
		ex := extractions[i]
		if ex.err != nil {
			p.logger.Warn("Skipping metadata file", slog.String("path", path), slog.String("error", ex.err.Error()))
			result.FilesFailed++
			result.Failures = append(result.Failures, FileFailure{Path: path, Err: ex.err})
			continue
		}

		book := ex.book
		inRange := koreader.FilterByDate(book.Highlights, r)

		p.logger.Debug("Parsed metadata file",
			slog.String("path", path),
			slog.String("title", book.Title),
			slog.Int("highlights", len(book.Highlights)),
			slog.Int("in_range", len(inRange)),
		)

		if len(inRange) == 0 {
			continue
		}

		summary := BookSummary{
			Title:   book.Title,
			Author:  book.Author,
			Path:    path,
			InRange: len(inRange),
		}

		if p.store != nil {
			saved, err := p.store.SaveBookHighlights(book, inRange)
			if err != nil {
				return result, fmt.Errorf("failed to save highlights of %q: %w", book.Title, err)
			}
			summary.Inserted = saved.Inserted
			summary.Duplicate = saved.Ignored
			result.Inserted += saved.Inserted
			result.Ignored += saved.Ignored
		}

		result.BooksMatched++
		result.HighlightsInRange += len(inRange)
		result.Books = append(result.Books, summary)
	}

	// Notes are rebuilt from the store, so highlights of earlier runs stay.
	if p.exporter != nil && p.store != nil {
		exported, err := p.exporter.ExportPending()
		if err != nil {
			return result, fmt.Errorf("failed to export highlights: %w", err)
		}
		result.Export = &exported
	}

	return result, nil
}

// extractAll reads and parses files concurrently. Results keep the order
// of files regardless of completion order.
func (p *Pipeline) extractAll(ctx context.Context, files []string) ([]extraction, error) {
	extractions := make([]extraction, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			extractions[i] = extractFile(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return extractions, nil
}

func extractFile(path string) extraction {
	content, err := os.ReadFile(path)
	if err != nil {
		return extraction{err: fmt.Errorf("failed to read metadata file: %w", err)}
	}

	book, err := koreader.Extract(string(content), path)
	return extraction{book: book, err: err}
}
