package entities

import (
	"fmt"
	"time"
)

// DefaultAuthor is used when a book's doc_props carry no authors field.
const DefaultAuthor = "Unknown"

// BookData is one parsed KOReader metadata file.
type BookData struct {
	Title      string
	Author     string
	Highlights []Highlight // in source field order
}

// Highlight is a single annotation taken from a metadata file.
type Highlight struct {
	Chapter  *string
	Page     int
	Text     string
	Note     *string // not written by KOReader yet, kept for persistence
	Datetime time.Time
}

// ChapterOrEmpty returns the chapter name or "" when the annotation has none.
func (h Highlight) ChapterOrEmpty() string {
	if h.Chapter == nil {
		return ""
	}
	return *h.Chapter
}

// StoredHighlight is the persisted form of a Highlight. Rows are unique on
// (book_title, page, text).
type StoredHighlight struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookTitle  string    `gorm:"not null;uniqueIndex:idx_highlight_natural_key,priority:1" json:"book_title"`
	BookAuthor string    `gorm:"not null" json:"book_author"`
	Chapter    *string   `json:"chapter,omitempty"`
	Page       int       `gorm:"not null;uniqueIndex:idx_highlight_natural_key,priority:2" json:"page"`
	Text       string    `gorm:"type:text;not null;uniqueIndex:idx_highlight_natural_key,priority:3" json:"text"`
	Note       *string   `gorm:"type:text" json:"note,omitempty"`
	Datetime   string    `gorm:"not null" json:"datetime"` // 2006-01-02 15:04:05
	Processed  bool      `gorm:"default:false" json:"processed"`
	CreatedAt  time.Time `json:"created_at"`
}

func (StoredHighlight) TableName() string {
	return "highlights"
}

// Highlight converts the row back into a Highlight.
func (s StoredHighlight) Highlight() (Highlight, error) {
	datetime, err := time.Parse(DatetimeLayout, s.Datetime)
	if err != nil {
		return Highlight{}, fmt.Errorf("highlight %d has invalid datetime %q: %w", s.ID, s.Datetime, err)
	}
	return Highlight{
		Chapter:  s.Chapter,
		Page:     s.Page,
		Text:     s.Text,
		Note:     s.Note,
		Datetime: datetime,
	}, nil
}
