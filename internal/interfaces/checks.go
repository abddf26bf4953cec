package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/koreader-highlights/internal/database"
	"github.com/mrlokans/koreader-highlights/internal/exporters"
	"github.com/mrlokans/koreader-highlights/internal/services"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// HighlightStore implementations
var _ services.HighlightStore = (*database.Database)(nil)

// PendingHighlightStore implementations
var _ services.PendingHighlightStore = (*database.Database)(nil)

// =============================================================================
// Export
// =============================================================================

// BookExporter implementations
var _ services.BookExporter = (*exporters.MarkdownExporter)(nil)

// PendingBookExporter implementations
var _ services.PendingBookExporter = (*exporters.PendingExporter)(nil)
