// Package database stores extracted highlights in SQLite through gorm.
//
// Each highlight becomes one row of the highlights table. Rows are unique on
// (book_title, page, text): saving a highlight that is already present is
// not an error, it is reported as ignored so repeated runs over the same
// date window stay idempotent.
//
//	db, err := database.NewDatabase("./highlights.db")
//	result, err := db.SaveBookHighlights(book, inRange)
//	fmt.Println(result.Inserted, result.Ignored)
//
// The processed flag is left for downstream consumers (e.g. a note-taking
// export) to mark rows they have already picked up.
package database
