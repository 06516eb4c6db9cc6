package http

import (
	"context"

	"github.com/mrlokans/library/internal/database/catalog"
	"github.com/mrlokans/library/internal/database/inventory"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/stats"
)

// This file consolidates the interfaces HTTP controllers depend on.
// Each controller takes only the capability it needs.

// --- Lending ---

// Lender opens and closes loans.
type Lender interface {
	Borrow(ctx context.Context, readerID, bookID uint) (*entities.Loan, error)
	Return(ctx context.Context, loanID uint) (*entities.Loan, error)
}

// --- Catalog ---

// LedgerStore changes the number of copies a book has.
type LedgerStore interface {
	AddCopies(ctx context.Context, in inventory.NewCopies) (*entities.Book, error)
	RemoveBook(ctx context.Context, bookID uint) error
}

// CatalogStore reads and edits book descriptions.
type CatalogStore interface {
	ListBooks(ctx context.Context) ([]entities.BookRow, error)
	SearchBooks(ctx context.Context, keyword string) ([]entities.BookRow, error)
	SearchByAuthor(ctx context.Context, author string) ([]entities.BookRow, error)
	UpdateBook(ctx context.Context, bookID uint, in catalog.BookUpdate) (*entities.BookRow, error)
	LoanRecords(ctx context.Context) ([]entities.LoanRecord, error)
}

// ReaderStore registers and lists readers.
type ReaderStore interface {
	RegisterReader(ctx context.Context, name, gender, phone string) (*entities.Reader, error)
	ListReaders(ctx context.Context) ([]entities.Reader, error)
}

// --- Read-side ---

// StatisticsProvider computes the library rollups.
type StatisticsProvider interface {
	Popularity(ctx context.Context) ([]stats.PopularityRow, error)
	ReaderActivity(ctx context.Context) ([]stats.ReaderActivityRow, error)
	CategoryDistribution(ctx context.Context) ([]stats.CategoryRow, error)
	OverdueSnapshot(ctx context.Context) ([]stats.OverdueRow, error)
	BorrowTrend(ctx context.Context) (*stats.Trend, error)
	Overview(ctx context.Context) (*stats.Overview, error)
}

// Recommender ranks books for a reader or a seed book.
type Recommender interface {
	ByReader(ctx context.Context, readerID uint) ([]entities.BookRow, error)
	BySeed(ctx context.Context, bookID uint) ([]entities.BookRow, error)
}

// --- Audit ---

// AuditLog lists recorded events.
type AuditLog interface {
	GetEvents(ctx context.Context, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// CatalogAuditor records inventory and catalog changes. Implementations must
// not block.
type CatalogAuditor interface {
	LogAddCopies(ctx context.Context, bookID uint, title string, count int, err error)
	LogRemoveBook(ctx context.Context, bookID uint, err error)
	LogUpdateBook(ctx context.Context, bookID uint, err error)
}
