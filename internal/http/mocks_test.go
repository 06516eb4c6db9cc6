package http

import (
	"context"

	"github.com/mrlokans/library/internal/database/catalog"
	"github.com/mrlokans/library/internal/database/inventory"
	"github.com/mrlokans/library/internal/entities"
)

type mockLender struct {
	borrowReader, borrowBook uint
	returned                 uint
	loan                     *entities.Loan
	err                      error
}

func (m *mockLender) Borrow(_ context.Context, readerID, bookID uint) (*entities.Loan, error) {
	m.borrowReader, m.borrowBook = readerID, bookID
	return m.loan, m.err
}

func (m *mockLender) Return(_ context.Context, loanID uint) (*entities.Loan, error) {
	m.returned = loanID
	return m.loan, m.err
}

type mockCatalog struct {
	rows     []entities.BookRow
	records  []entities.LoanRecord
	keyword  string
	updateID uint
	update   catalog.BookUpdate
	err      error
}

func (m *mockCatalog) ListBooks(context.Context) ([]entities.BookRow, error) {
	return m.rows, m.err
}

func (m *mockCatalog) SearchBooks(_ context.Context, keyword string) ([]entities.BookRow, error) {
	m.keyword = keyword
	return m.rows, m.err
}

func (m *mockCatalog) SearchByAuthor(_ context.Context, author string) ([]entities.BookRow, error) {
	m.keyword = author
	return m.rows, m.err
}

func (m *mockCatalog) UpdateBook(_ context.Context, bookID uint, in catalog.BookUpdate) (*entities.BookRow, error) {
	m.updateID, m.update = bookID, in
	if m.err != nil {
		return nil, m.err
	}
	return &entities.BookRow{BookID: bookID, BookName: in.Title}, nil
}

func (m *mockCatalog) LoanRecords(context.Context) ([]entities.LoanRecord, error) {
	return m.records, m.err
}

type mockLedger struct {
	added   inventory.NewCopies
	removed uint
	err     error
}

func (m *mockLedger) AddCopies(_ context.Context, in inventory.NewCopies) (*entities.Book, error) {
	m.added = in
	if m.err != nil {
		return nil, m.err
	}
	return &entities.Book{ID: 1, Title: in.Title, TotalCount: in.Count, AvailableCount: in.Count}, nil
}

func (m *mockLedger) RemoveBook(_ context.Context, bookID uint) error {
	m.removed = bookID
	return m.err
}

type mockAuditor struct {
	actions []string
}

func (m *mockAuditor) LogAddCopies(context.Context, uint, string, int, error) {
	m.actions = append(m.actions, "add_copies")
}

func (m *mockAuditor) LogRemoveBook(context.Context, uint, error) {
	m.actions = append(m.actions, "remove_book")
}

func (m *mockAuditor) LogUpdateBook(context.Context, uint, error) {
	m.actions = append(m.actions, "update_book")
}
