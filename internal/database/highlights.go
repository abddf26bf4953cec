package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/koreader-highlights/internal/entities"
	"github.com/mrlokans/koreader-highlights/internal/services"
)

// SaveHighlight stores a single highlight. It returns false when a row with
// the same book title, page and text already exists.
func (d *Database) SaveHighlight(title, author string, h entities.Highlight) (bool, error) {
	return saveHighlight(d.DB, title, author, h)
}

// SaveBookHighlights stores the given highlights of book in one transaction.
// The book's own Highlights field is not consulted, so callers can pass a
// filtered subset.
func (d *Database) SaveBookHighlights(book *entities.BookData, highlights []entities.Highlight) (services.SaveResult, error) {
	var result services.SaveResult

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		for _, h := range highlights {
			inserted, err := saveHighlight(tx, book.Title, book.Author, h)
			if err != nil {
				return err
			}
			if inserted {
				result.Inserted++
			} else {
				result.Ignored++
			}
		}
		return nil
	})
	if err != nil {
		return services.SaveResult{}, err
	}

	return result, nil
}

func saveHighlight(db *gorm.DB, title, author string, h entities.Highlight) (bool, error) {
	row := entities.StoredHighlight{
		BookTitle:  title,
		BookAuthor: author,
		Chapter:    h.Chapter,
		Page:       h.Page,
		Text:       h.Text,
		Note:       h.Note,
		Datetime:   h.Datetime.Format(entities.DatetimeLayout),
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert highlight on page %d of %q: %w", h.Page, title, result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (d *Database) CountHighlights() (int64, error) {
	var count int64
	err := d.DB.Model(&entities.StoredHighlight{}).Count(&count).Error
	return count, err
}

// GetHighlightsByBook returns the stored highlights of a book ordered by
// timestamp.
func (d *Database) GetHighlightsByBook(title string) ([]entities.StoredHighlight, error) {
	var rows []entities.StoredHighlight
	err := d.DB.Where("book_title = ?", title).Order("datetime, id").Find(&rows).Error
	return rows, err
}

// GetUnprocessed returns every highlight not yet marked as processed.
func (d *Database) GetUnprocessed() ([]entities.StoredHighlight, error) {
	var rows []entities.StoredHighlight
	err := d.DB.Where("processed = ?", false).Order("book_title, datetime, id").Find(&rows).Error
	return rows, err
}

// MarkProcessed flags the given rows as handled by a downstream consumer.
func (d *Database) MarkProcessed(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return d.DB.Model(&entities.StoredHighlight{}).Where("id IN ?", ids).Update("processed", true).Error
}
