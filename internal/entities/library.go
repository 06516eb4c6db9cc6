package entities

import "time"

type LoanStatus string

const (
	LoanStatusOpen     LoanStatus = "OPEN"
	LoanStatusReturned LoanStatus = "RETURNED"
)

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"category_id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"category_name"`
	CreatedAt time.Time `json:"-"`
}

// Book carries the ledger counts. AvailableCount is owned by the inventory
// ledger and must equal TotalCount minus the number of open loans.
type Book struct {
	ID             uint      `gorm:"primaryKey" json:"book_id"`
	Title          string    `gorm:"uniqueIndex:idx_books_title_author;size:255;not null" json:"book_name"`
	Author         string    `gorm:"uniqueIndex:idx_books_title_author;index;size:255" json:"author"`
	Publisher      string    `gorm:"size:255" json:"publisher"`
	CategoryID     uint      `gorm:"index" json:"category_id"`
	TotalCount     int       `gorm:"not null;default:0" json:"total_count"`
	AvailableCount int       `gorm:"not null;default:0" json:"available_count"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

type Reader struct {
	ID        uint      `gorm:"primaryKey" json:"reader_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Gender    string    `gorm:"size:10" json:"gender"`
	Phone     string    `gorm:"size:30" json:"phone"`
	CreatedAt time.Time `json:"-"`
}

// Admin rows are consumed by the external authentication gate; the API never
// reads them.
type Admin struct {
	ID           uint      `gorm:"primaryKey" json:"admin_id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string    `gorm:"size:128" json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Loan is created once by a borrow and closed once by a return. Dates are
// civil dates stored as UTC midnight.
type Loan struct {
	ID               uint       `gorm:"primaryKey" json:"borrow_id"`
	ReaderID         uint       `gorm:"index;not null" json:"reader_id"`
	BookID           uint       `gorm:"index;not null" json:"book_id"`
	BorrowDate       time.Time  `gorm:"index;not null" json:"borrow_date"`
	DueDate          time.Time  `gorm:"not null" json:"due_date"`
	ActualReturnDate *time.Time `gorm:"index" json:"actual_return_date"`
	Status           LoanStatus `gorm:"size:20;not null;index" json:"status"`
	CreatedAt        time.Time  `json:"-"`
	UpdatedAt        time.Time  `json:"-"`
}

// IsOpen reports whether the loan still holds a copy.
func (l Loan) IsOpen() bool {
	return l.ActualReturnDate == nil
}

// BookRow is the listing shape shared by catalog, search and recommendation
// endpoints.
type BookRow struct {
	BookID         uint   `gorm:"column:book_id" json:"book_id"`
	BookName       string `gorm:"column:book_name" json:"book_name"`
	Author         string `gorm:"column:author" json:"author"`
	Publisher      string `gorm:"column:publisher" json:"publisher"`
	CategoryID     uint   `gorm:"column:category_id" json:"category_id"`
	TotalCount     int    `gorm:"column:total_count" json:"total_count"`
	AvailableCount int    `gorm:"column:available_count" json:"available_count"`
	CategoryName   string `gorm:"column:category_name" json:"category_name"`
	BorrowCount    int64  `gorm:"column:borrow_count" json:"borrow_count,omitempty"`
}

// LoanRecord is a loan joined with reader name and book title.
type LoanRecord struct {
	BorrowID         uint       `gorm:"column:borrow_id" json:"borrow_id"`
	ReaderID         uint       `gorm:"column:reader_id" json:"reader_id"`
	ReaderName       string     `gorm:"column:reader_name" json:"reader_name"`
	BookID           uint       `gorm:"column:book_id" json:"book_id"`
	BookName         string     `gorm:"column:book_name" json:"book_name"`
	BorrowDate       time.Time  `gorm:"column:borrow_date" json:"borrow_date"`
	DueDate          time.Time  `gorm:"column:due_date" json:"due_date"`
	ActualReturnDate *time.Time `gorm:"column:actual_return_date" json:"actual_return_date"`
	Status           LoanStatus `gorm:"column:status" json:"status"`
}
