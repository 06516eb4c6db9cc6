package inventory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/apperr"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.DB
}

func TestAddCopies_CreatesBookAndCategory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	book, err := repo.AddCopies(context.Background(), NewCopies{
		Title: "Dune", Author: "Herbert", Publisher: "Chilton", CategoryName: "SF", Count: 2,
	})
	require.NoError(t, err)
	assert.NotZero(t, book.ID)
	assert.Equal(t, 2, book.TotalCount)
	assert.Equal(t, 2, book.AvailableCount)

	var category entities.Category
	require.NoError(t, db.First(&category, book.CategoryID).Error)
	assert.Equal(t, "SF", category.Name)
}

func TestAddCopies_IncrementsExistingByTitleAuthor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first, err := repo.AddCopies(ctx, NewCopies{Title: "Dune", Author: "Herbert", CategoryName: "SF", Count: 2})
	require.NoError(t, err)

	second, err := repo.AddCopies(ctx, NewCopies{Title: "Dune", Author: "Herbert", CategoryName: "SF", Count: 3})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.TotalCount)
	assert.Equal(t, 5, second.AvailableCount)

	var books, categories int64
	db.Model(&entities.Book{}).Count(&books)
	db.Model(&entities.Category{}).Count(&categories)
	assert.Equal(t, int64(1), books)
	assert.Equal(t, int64(1), categories)
}

func TestAddCopies_ByBookID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	book, err := repo.AddCopies(ctx, NewCopies{Title: "Dune", Author: "Herbert", Count: 1})
	require.NoError(t, err)

	updated, err := repo.AddCopies(ctx, NewCopies{BookID: book.ID, Count: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalCount)
	assert.Equal(t, 5, updated.AvailableCount)

	_, err = repo.AddCopies(ctx, NewCopies{BookID: 999, Count: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddCopies_Validation(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.AddCopies(ctx, NewCopies{Title: "Dune", Count: 0})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = repo.AddCopies(ctx, NewCopies{Title: "Dune", Count: -1})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = repo.AddCopies(ctx, NewCopies{Title: "  ", Count: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestResolveCategory_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	a, err := ResolveCategory(db, "History")
	require.NoError(t, err)
	b, err := ResolveCategory(db, "History")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	none, err := ResolveCategory(db, "")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestReserveAndReleaseCopy(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	book, err := repo.AddCopies(context.Background(), NewCopies{Title: "Dune", Author: "Herbert", Count: 1})
	require.NoError(t, err)

	ok, err := repo.ReserveCopy(db, book.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ReserveCopy(db, book.ID)
	require.NoError(t, err)
	assert.False(t, ok, "no copy left")

	var stored entities.Book
	require.NoError(t, db.First(&stored, book.ID).Error)
	assert.Equal(t, 0, stored.AvailableCount)

	require.NoError(t, repo.ReleaseCopy(db, book.ID))
	require.NoError(t, db.First(&stored, book.ID).Error)
	assert.Equal(t, 1, stored.AvailableCount)
}

func TestReserveCopy_MissingBook(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	ok, err := repo.ReserveCopy(db, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, repo.ReleaseCopy(db, 42), apperr.ErrNotFound)
}

func TestRemoveBook(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	book, err := repo.AddCopies(ctx, NewCopies{Title: "Dune", Author: "Herbert", Count: 1})
	require.NoError(t, err)

	today := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := entities.Loan{
		ReaderID:   1,
		BookID:     book.ID,
		BorrowDate: today,
		DueDate:    today.AddDate(0, 0, 30),
		Status:     entities.LoanStatusOpen,
	}
	require.NoError(t, db.Create(&loan).Error)

	err = repo.RemoveBook(ctx, book.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	returned := today.AddDate(0, 0, 3)
	require.NoError(t, db.Model(&loan).Updates(map[string]any{
		"actual_return_date": returned,
		"status":             entities.LoanStatusReturned,
	}).Error)

	require.NoError(t, repo.RemoveBook(ctx, book.ID))
	_, err = repo.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, repo.RemoveBook(ctx, book.ID), apperr.ErrNotFound)
}
