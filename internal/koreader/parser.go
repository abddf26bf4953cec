// Package koreader reads highlights out of the metadata sidecars KOReader
// keeps next to each book (book.sdr/metadata.epub.lua).
//
// A sidecar is a Lua chunk returning one table literal:
//
//	return {
//	    ["annotations"] = {
//	        [1] = {
//	            ["chapter"] = "Chapter 1",
//	            ["datetime"] = "2026-01-25 10:30:00",
//	            ["pageno"] = 42,
//	            ["text"] = "This is a highlighted text",
//	        },
//	    },
//	    ["doc_props"] = {
//	        ["title"] = "Test Book",
//	        ["authors"] = "Test Author",
//	    },
//	}
//
// The chunk is parsed, never executed.
package koreader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"

	"github.com/mrlokans/koreader-highlights/internal/entities"
)

// Extract parses the contents of one metadata file. label names the file
// in error messages.
//
// Only a broken chunk (ErrInvalidLua) or a missing title (ErrMissingTitle)
// fail the whole book. Annotations lacking text or a valid datetime are
// dropped one by one.
func Extract(source, label string) (*entities.BookData, error) {
	chunk, err := parse.Parse(strings.NewReader(source), label)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLua, label, err)
	}

	var (
		title, author string
		hasTitle      bool
		hasAuthor     bool
		highlights    []entities.Highlight
	)

	root, ok := returnedTable(chunk)
	if ok {
		for _, field := range root.Fields {
			key, ok := stringValue(field.Key)
			if !ok {
				continue
			}

			switch key {
			case "doc_props":
				if props, ok := field.Value.(*ast.TableExpr); ok {
					title, hasTitle = lookupString(props, "title")
					author, hasAuthor = lookupString(props, "authors")
				}
			case "annotations":
				if annotations, ok := field.Value.(*ast.TableExpr); ok {
					highlights = extractAnnotations(annotations)
				}
			}
		}
	}

	if !hasTitle || title == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingTitle, label)
	}
	if !hasAuthor {
		author = entities.DefaultAuthor
	}

	return &entities.BookData{
		Title:      title,
		Author:     author,
		Highlights: highlights,
	}, nil
}

// returnedTable finds the table constructor yielded by the chunk's trailing
// return statement.
func returnedTable(chunk []ast.Stmt) (*ast.TableExpr, bool) {
	if len(chunk) == 0 {
		return nil, false
	}

	ret, ok := chunk[len(chunk)-1].(*ast.ReturnStmt)
	if !ok || len(ret.Exprs) != 1 {
		return nil, false
	}

	table, ok := ret.Exprs[0].(*ast.TableExpr)
	return table, ok
}

func extractAnnotations(table *ast.TableExpr) []entities.Highlight {
	var highlights []entities.Highlight

	// Keys ([1], [2], ...) carry no meaning beyond order.
	for _, field := range table.Fields {
		annotation, ok := field.Value.(*ast.TableExpr)
		if !ok {
			continue
		}
		if h, ok := extractAnnotation(annotation); ok {
			highlights = append(highlights, h)
		}
	}

	return highlights
}

func extractAnnotation(table *ast.TableExpr) (entities.Highlight, bool) {
	text, ok := lookupString(table, "text")
	if !ok || text == "" {
		return entities.Highlight{}, false
	}

	rawDatetime, ok := lookupString(table, "datetime")
	if !ok {
		return entities.Highlight{}, false
	}
	datetime, ok := parseDatetime(rawDatetime)
	if !ok {
		return entities.Highlight{}, false
	}

	h := entities.Highlight{
		Text:     text,
		Datetime: datetime,
	}
	if page, ok := lookupInt(table, "pageno"); ok {
		h.Page = page
	}
	if chapter, ok := lookupString(table, "chapter"); ok {
		h.Chapter = &chapter
	}

	return h, true
}

// parseDatetime accepts exactly DatetimeLayout. time.Parse alone would also
// take fractional seconds, which the stored text form cannot keep.
func parseDatetime(raw string) (time.Time, bool) {
	t, err := time.Parse(entities.DatetimeLayout, raw)
	if err != nil || t.Format(entities.DatetimeLayout) != raw {
		return time.Time{}, false
	}
	return t, true
}

// lookup returns the value of the last field whose key is the string name.
func lookup(table *ast.TableExpr, name string) (ast.Expr, bool) {
	var (
		value ast.Expr
		found bool
	)
	for _, field := range table.Fields {
		// The parser turns bare name keys (title = "x") into string keys too,
		// so both spellings match. KOReader itself only writes ["title"].
		if key, ok := stringValue(field.Key); ok && key == name {
			value, found = field.Value, true
		}
	}
	return value, found
}

func lookupString(table *ast.TableExpr, name string) (string, bool) {
	value, ok := lookup(table, name)
	if !ok {
		return "", false
	}
	return stringValue(value)
}

func lookupInt(table *ast.TableExpr, name string) (int, bool) {
	value, ok := lookup(table, name)
	if !ok {
		return 0, false
	}
	return intValue(value)
}

func stringValue(expr ast.Expr) (string, bool) {
	switch e := expr.(type) {
	case *ast.StringExpr:
		return e.Value, true
	default:
		return "", false
	}
}

// intValue accepts decimal integer literals that fit in 32 bits. Floats,
// hex literals and expressions such as -1 are not page numbers.
func intValue(expr ast.Expr) (int, bool) {
	switch e := expr.(type) {
	case *ast.NumberExpr:
		n, err := strconv.ParseInt(e.Value, 10, 32)
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
