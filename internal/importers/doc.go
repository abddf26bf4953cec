// Package importers runs the KOReader import workflow over a set of
// metadata files.
//
// # Architecture
//
//	metadata.epub.lua files → koreader.Extract → FilterByDate → HighlightStore
//	                                                          ↘ PendingBookExporter (optional)
//
// Files are extracted concurrently (see WithWorkers) but results are
// consumed in the order the files were given, so storage writes and the
// per-book summary are deterministic.
//
// A file that cannot be read or parsed (invalid Lua, missing title) is
// recorded in ImportResult.Failures and the run continues. A storage error
// stops the run since every following write would fail the same way.
//
// # Example Usage
//
//	db, _ := database.NewDatabase(cfg.Database.Path)
//	markdown := exporters.NewMarkdownExporter(cfg.Markdown.OutputDir)
//	pipeline := importers.NewPipeline(db,
//		importers.WithWorkers(cfg.Extract.Workers),
//		importers.WithExporter(exporters.NewPendingExporter(db, markdown)),
//	)
//	result, err := pipeline.Run(ctx, files, dateRange)
package importers
