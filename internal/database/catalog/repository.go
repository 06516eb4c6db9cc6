// Package catalog provides the book and reader CRUD used alongside the
// lending ledger.
//
// Copy counts are not written here; they belong to the inventory package.
//
// # Interface Implementation
//
//	var _ http.CatalogStore = (*Repository)(nil)
//	var _ http.ReaderStore = (*Repository)(nil)
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	rows, err := repo.SearchBooks(ctx, "dune")
package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/apperr"
	"github.com/mrlokans/library/internal/database/inventory"
	"github.com/mrlokans/library/internal/entities"
)

const bookRowColumns = "b.id AS book_id, b.title AS book_name, b.author, b.publisher, b.category_id, " +
	"b.total_count, b.available_count, COALESCE(c.name, '') AS category_name"

// BookUpdate is the editable part of a book.
type BookUpdate struct {
	Title        string
	Author       string
	Publisher    string
	CategoryName string
}

// Repository handles catalog and reader database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) bookRows(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("books AS b").
		Select(bookRowColumns).
		Joins("LEFT JOIN categories c ON c.id = b.category_id")
}

// ListBooks returns every book with its category name, ordered by id.
func (r *Repository) ListBooks(ctx context.Context) ([]entities.BookRow, error) {
	rows := []entities.BookRow{}
	if err := r.bookRows(ctx).Order("b.id ASC").Scan(&rows).Error; err != nil {
		return nil, apperr.Storage("list books", err)
	}
	return rows, nil
}

// SearchBooks matches keyword against title, author and publisher.
func (r *Repository) SearchBooks(ctx context.Context, keyword string) ([]entities.BookRow, error) {
	pattern := "%" + keyword + "%"
	rows := []entities.BookRow{}
	err := r.bookRows(ctx).
		Where("b.title LIKE ? OR b.author LIKE ? OR b.publisher LIKE ?", pattern, pattern, pattern).
		Order("b.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("search books", err)
	}
	return rows, nil
}

// SearchByAuthor matches a partial author name.
func (r *Repository) SearchByAuthor(ctx context.Context, author string) ([]entities.BookRow, error) {
	rows := []entities.BookRow{}
	err := r.bookRows(ctx).
		Where("b.author LIKE ?", "%"+author+"%").
		Order("b.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("search by author", err)
	}
	return rows, nil
}

// GetBook returns a single book row.
func (r *Repository) GetBook(ctx context.Context, bookID uint) (*entities.BookRow, error) {
	rows := []entities.BookRow{}
	if err := r.bookRows(ctx).Where("b.id = ?", bookID).Limit(1).Scan(&rows).Error; err != nil {
		return nil, apperr.Storage("get book", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("book", bookID)
	}
	return &rows[0], nil
}

// UpdateBook rewrites the descriptive fields of a book, creating the named
// category when needed.
func (r *Repository) UpdateBook(ctx context.Context, bookID uint, in BookUpdate) (*entities.BookRow, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("book_name is required")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := inventory.ResolveCategory(tx, in.CategoryName)
		if err != nil {
			return err
		}
		var categoryID uint
		if category != nil {
			categoryID = category.ID
		}

		res := tx.Model(&entities.Book{}).Where("id = ?", bookID).Updates(map[string]any{
			"title":       in.Title,
			"author":      in.Author,
			"publisher":   in.Publisher,
			"category_id": categoryID,
		})
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("another book has the same title and author")
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("book", bookID)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("update book", err)
	}
	return r.GetBook(ctx, bookID)
}

// RegisterReader creates a reader.
func (r *Repository) RegisterReader(ctx context.Context, name, gender, phone string) (*entities.Reader, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("name is required")
	}
	reader := &entities.Reader{Name: name, Gender: gender, Phone: phone}
	if err := r.db.WithContext(ctx).Create(reader).Error; err != nil {
		return nil, apperr.Storage("register reader", err)
	}
	return reader, nil
}

// ListReaders returns all readers ordered by id.
func (r *Repository) ListReaders(ctx context.Context) ([]entities.Reader, error) {
	readers := []entities.Reader{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&readers).Error; err != nil {
		return nil, apperr.Storage("list readers", err)
	}
	return readers, nil
}

// LoanRecords returns every loan with reader name and book title, newest first.
// Loans of removed books keep an empty title.
func (r *Repository) LoanRecords(ctx context.Context) ([]entities.LoanRecord, error) {
	records := []entities.LoanRecord{}
	err := r.db.WithContext(ctx).
		Table("loans AS l").
		Select("l.id AS borrow_id, l.reader_id, COALESCE(rd.name, '') AS reader_name, l.book_id, " +
			"COALESCE(b.title, '') AS book_name, l.borrow_date, l.due_date, l.actual_return_date, l.status").
		Joins("LEFT JOIN readers rd ON rd.id = l.reader_id").
		Joins("LEFT JOIN books b ON b.id = l.book_id").
		Order("l.borrow_date DESC, l.id DESC").
		Scan(&records).Error
	if err != nil {
		return nil, apperr.Storage("loan records", err)
	}
	return records, nil
}
