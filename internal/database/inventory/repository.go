// Package inventory implements the per-book copy ledger.
//
// The ledger is the only writer of Book.AvailableCount. Reservations are a
// single conditional UPDATE so concurrent borrowers cannot drive the count
// below zero:
//
//	UPDATE books SET available_count = available_count - 1
//	WHERE id = ? AND available_count > 0
//
// # Usage
//
//	ledger := inventory.NewRepository(db)
//	err := db.Transaction(func(tx *gorm.DB) error {
//		ok, err := ledger.ReserveCopy(tx, bookID)
//		...
//	})
package inventory

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/library/internal/apperr"
	"github.com/mrlokans/library/internal/entities"
)

// NewCopies describes an addCopies request. When BookID is set the copies go
// to that book; otherwise the book is matched or created by (Title, Author).
type NewCopies struct {
	BookID       uint
	Title        string
	Author       string
	Publisher    string
	CategoryName string
	Count        int
}

// Repository handles ledger operations on the books table.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new inventory repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddCopies increments total and available counts of an existing book, or
// creates the book with both counts set to Count.
func (r *Repository) AddCopies(ctx context.Context, in NewCopies) (*entities.Book, error) {
	if in.Count <= 0 {
		return nil, apperr.Validation("count must be positive")
	}
	if in.BookID == 0 && strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("book_name is required")
	}

	var book entities.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.BookID != 0 {
			return addToExisting(tx, in.BookID, in.Count, &book)
		}

		category, err := ResolveCategory(tx, in.CategoryName)
		if err != nil {
			return err
		}

		book = entities.Book{
			Title:          in.Title,
			Author:         in.Author,
			Publisher:      in.Publisher,
			TotalCount:     in.Count,
			AvailableCount: in.Count,
		}
		if category != nil {
			book.CategoryID = category.ID
		}

		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "title"}, {Name: "author"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_count":     gorm.Expr("total_count + ?", in.Count),
				"available_count": gorm.Expr("available_count + ?", in.Count),
			}),
		}).Create(&book).Error
		if err != nil {
			return err
		}

		// The upsert may have hit an existing row; reload to return its counts.
		return tx.Where("title = ? AND author = ?", in.Title, in.Author).First(&book).Error
	})
	if err != nil {
		return nil, apperr.Storage("add copies", err)
	}
	return &book, nil
}

func addToExisting(tx *gorm.DB, bookID uint, count int, book *entities.Book) error {
	res := tx.Model(&entities.Book{}).Where("id = ?", bookID).Updates(map[string]any{
		"total_count":     gorm.Expr("total_count + ?", count),
		"available_count": gorm.Expr("available_count + ?", count),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("book", bookID)
	}
	return tx.First(book, bookID).Error
}

// ResolveCategory returns the category with the given name, creating it when
// absent. The insert ignores unique-key conflicts so concurrent callers agree
// on one row. An empty name resolves to no category.
func ResolveCategory(tx *gorm.DB, name string) (*entities.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	category := entities.Category{Name: name}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&category).Error; err != nil {
		return nil, err
	}

	var resolved entities.Category
	if err := tx.Where("name = ?", name).First(&resolved).Error; err != nil {
		return nil, err
	}
	return &resolved, nil
}

// ReserveCopy takes one available copy of the book. It reports false, with no
// write, when no copy is available or the book does not exist.
func (r *Repository) ReserveCopy(tx *gorm.DB, bookID uint) (bool, error) {
	res := tx.Model(&entities.Book{}).
		Where("id = ? AND available_count > 0", bookID).
		UpdateColumn("available_count", gorm.Expr("available_count - ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseCopy gives one copy back to the book.
func (r *Repository) ReleaseCopy(tx *gorm.DB, bookID uint) error {
	res := tx.Model(&entities.Book{}).
		Where("id = ?", bookID).
		UpdateColumn("available_count", gorm.Expr("available_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("book", bookID)
	}
	return nil
}

// RemoveBook deletes a book that has no open loans. The book row is locked
// first so a concurrent borrow cannot slip in between the check and the delete.
func (r *Repository) RemoveBook(ctx context.Context, bookID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&book, bookID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("book", bookID)
		}
		if err != nil {
			return err
		}

		var open int64
		if err := tx.Model(&entities.Loan{}).
			Where("book_id = ? AND actual_return_date IS NULL", bookID).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return apperr.Conflict("book has open loans")
		}

		return tx.Delete(&entities.Book{}, bookID).Error
	})
	return apperr.Storage("remove book", err)
}

// GetBook returns the ledger row of a book.
func (r *Repository) GetBook(ctx context.Context, bookID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("book", bookID)
	}
	if err != nil {
		return nil, apperr.Storage("get book", err)
	}
	return &book, nil
}
