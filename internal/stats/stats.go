// Package stats computes the read-only rollups over books, readers and loans.
//
// Count rollups are single GROUP BY queries. Rollups that carry dates fold
// loan rows in Go so that civil dates come back as time.Time on every driver.
package stats

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/apperr"
	"github.com/mrlokans/library/internal/clock"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/lending"
)

const (
	popularityLimit = 20
	topAuthorsLimit = 5
	dailyTrendDays  = 30
	monthlyTrend    = 12

	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

type PopularityRow struct {
	BookID         uint   `gorm:"column:book_id" json:"book_id"`
	BookName       string `gorm:"column:book_name" json:"book_name"`
	Author         string `gorm:"column:author" json:"author"`
	BorrowCount    int64  `gorm:"column:borrow_count" json:"borrow_count"`
	TotalCount     int    `gorm:"column:total_count" json:"total_count"`
	AvailableCount int    `gorm:"column:available_count" json:"available_count"`
	CategoryName   string `gorm:"column:category_name" json:"category_name"`
}

type ReaderActivityRow struct {
	ReaderID         uint    `json:"reader_id"`
	Name             string  `json:"name"`
	Gender           string  `json:"gender"`
	TotalBorrow      int     `json:"total_borrow"`
	CurrentBorrow    int     `json:"current_borrow"`
	FirstBorrowDate  *string `json:"first_borrow_date"`
	LatestBorrowDate *string `json:"latest_borrow_date"`
}

type CategoryRow struct {
	CategoryID      uint   `gorm:"column:category_id" json:"category_id"`
	CategoryName    string `gorm:"column:category_name" json:"category_name"`
	BookCount       int64  `gorm:"column:book_count" json:"book_count"`
	TotalCopies     int64  `gorm:"column:total_copies" json:"total_copies"`
	AvailableCopies int64  `gorm:"column:available_copies" json:"available_copies"`
	TotalBorrow     int64  `gorm:"column:total_borrow" json:"total_borrow"`
}

type OverdueRow struct {
	BorrowID    uint   `json:"borrow_id"`
	ReaderID    uint   `json:"reader_id"`
	ReaderName  string `json:"reader_name"`
	Phone       string `json:"phone"`
	BookID      uint   `json:"book_id"`
	BookName    string `json:"book_name"`
	Author      string `json:"author"`
	BorrowDate  string `json:"borrow_date"`
	DueDate     string `json:"due_date"`
	OverdueDays int    `json:"overdue_days"`
}

type DailyBucket struct {
	BorrowDay     string `json:"borrow_day"`
	BorrowCount   int    `json:"borrow_count"`
	UniqueReaders int    `json:"unique_readers"`
}

type MonthlyBucket struct {
	BorrowMonth   string `json:"borrow_month"`
	BorrowCount   int    `json:"borrow_count"`
	UniqueReaders int    `json:"unique_readers"`
}

// Trend holds sparse buckets in ascending order; periods without loans are
// omitted.
type Trend struct {
	Daily   []DailyBucket   `json:"daily"`
	Monthly []MonthlyBucket `json:"monthly"`
}

type BookTotals struct {
	TotalBooks  int64 `gorm:"column:total_books" json:"total_books"`
	TotalCopies int64 `gorm:"column:total_copies" json:"total_copies"`
}

type ReaderTotals struct {
	TotalReaders int64 `json:"total_readers"`
}

type BorrowTotals struct {
	TotalBorrows    int64 `gorm:"column:total_borrows" json:"total_borrows"`
	CurrentBorrows  int64 `gorm:"column:current_borrows" json:"current_borrows"`
	ReturnedBorrows int64 `gorm:"column:returned_borrows" json:"returned_borrows"`
}

type OverdueTotals struct {
	OverdueCount int `json:"overdue_count"`
}

type AuthorCount struct {
	Author    string `gorm:"column:author" json:"author"`
	BookCount int64  `gorm:"column:book_count" json:"book_count"`
}

type Overview struct {
	Books      BookTotals    `json:"books"`
	Readers    ReaderTotals  `json:"readers"`
	Borrows    BorrowTotals  `json:"borrows"`
	Overdue    OverdueTotals `json:"overdue"`
	TopAuthors []AuthorCount `json:"top_authors"`
}

// Aggregator runs the rollups against committed state. It never writes.
type Aggregator struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewAggregator(db *gorm.DB, c clock.Clock) *Aggregator {
	return &Aggregator{db: db, clock: c}
}

// Popularity ranks books by all-time loan count.
func (a *Aggregator) Popularity(ctx context.Context) ([]PopularityRow, error) {
	rows := []PopularityRow{}
	err := a.db.WithContext(ctx).
		Table("books AS b").
		Select("b.id AS book_id, b.title AS book_name, b.author, COUNT(l.id) AS borrow_count, " +
			"b.total_count, b.available_count, COALESCE(c.name, '') AS category_name").
		Joins("LEFT JOIN loans l ON l.book_id = b.id").
		Joins("LEFT JOIN categories c ON c.id = b.category_id").
		Group("b.id, b.title, b.author, b.total_count, b.available_count, c.name").
		Order("borrow_count DESC, b.id ASC").
		Limit(popularityLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("book popularity", err)
	}
	return rows, nil
}

// ReaderActivity summarizes each reader's loans, busiest readers first.
func (a *Aggregator) ReaderActivity(ctx context.Context) ([]ReaderActivityRow, error) {
	db := a.db.WithContext(ctx)

	var readers []entities.Reader
	if err := db.Order("id ASC").Find(&readers).Error; err != nil {
		return nil, apperr.Storage("reader activity", err)
	}
	var loans []entities.Loan
	if err := db.Select("id", "reader_id", "borrow_date", "actual_return_date").Find(&loans).Error; err != nil {
		return nil, apperr.Storage("reader activity", err)
	}
	byReader := lo.GroupBy(loans, func(l entities.Loan) uint { return l.ReaderID })

	rows := make([]ReaderActivityRow, 0, len(readers))
	for _, reader := range readers {
		row := ReaderActivityRow{ReaderID: reader.ID, Name: reader.Name, Gender: reader.Gender}
		held := byReader[reader.ID]
		row.TotalBorrow = len(held)
		row.CurrentBorrow = lo.CountBy(held, func(l entities.Loan) bool { return l.IsOpen() })
		if len(held) > 0 {
			first := lo.MinBy(held, func(x, y entities.Loan) bool { return x.BorrowDate.Before(y.BorrowDate) })
			latest := lo.MaxBy(held, func(x, y entities.Loan) bool { return x.BorrowDate.After(y.BorrowDate) })
			row.FirstBorrowDate = lo.ToPtr(first.BorrowDate.Format(dayLayout))
			row.LatestBorrowDate = lo.ToPtr(latest.BorrowDate.Format(dayLayout))
		}
		rows = append(rows, row)
	}

	// readers are already in id order
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalBorrow > rows[j].TotalBorrow })
	return rows, nil
}

// CategoryDistribution reports books, copies and loans per category.
func (a *Aggregator) CategoryDistribution(ctx context.Context) ([]CategoryRow, error) {
	rows := []CategoryRow{}
	err := a.db.WithContext(ctx).
		Table("categories AS c").
		Select("c.id AS category_id, c.name AS category_name, COUNT(b.id) AS book_count, " +
			"COALESCE(SUM(b.total_count), 0) AS total_copies, " +
			"COALESCE(SUM(b.available_count), 0) AS available_copies, " +
			"COALESCE(SUM(lc.loan_count), 0) AS total_borrow").
		Joins("LEFT JOIN books b ON b.category_id = c.id").
		Joins("LEFT JOIN (SELECT book_id, COUNT(*) AS loan_count FROM loans GROUP BY book_id) lc ON lc.book_id = b.id").
		Group("c.id, c.name").
		Order("book_count DESC, c.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("category distribution", err)
	}
	return rows, nil
}

// OverdueSnapshot lists overdue loans as of the aggregator's clock.
func (a *Aggregator) OverdueSnapshot(ctx context.Context) ([]OverdueRow, error) {
	return a.OverdueSnapshotAt(ctx, clock.Today(a.clock))
}

type openLoanRow struct {
	LoanID     uint      `gorm:"column:loan_id"`
	ReaderID   uint      `gorm:"column:reader_id"`
	ReaderName string    `gorm:"column:reader_name"`
	Phone      string    `gorm:"column:phone"`
	BookID     uint      `gorm:"column:book_id"`
	BookName   string    `gorm:"column:book_name"`
	Author     string    `gorm:"column:author"`
	BorrowDate time.Time `gorm:"column:borrow_date"`
	DueDate    time.Time `gorm:"column:due_date"`
}

// OverdueSnapshotAt lists loans overdue on the given civil date, most overdue
// first.
func (a *Aggregator) OverdueSnapshotAt(ctx context.Context, today time.Time) ([]OverdueRow, error) {
	var open []openLoanRow
	err := a.db.WithContext(ctx).
		Table("loans AS l").
		Select("l.id AS loan_id, l.reader_id, COALESCE(rd.name, '') AS reader_name, COALESCE(rd.phone, '') AS phone, " +
			"l.book_id, COALESCE(b.title, '') AS book_name, COALESCE(b.author, '') AS author, l.borrow_date, l.due_date").
		Joins("LEFT JOIN readers rd ON rd.id = l.reader_id").
		Joins("LEFT JOIN books b ON b.id = l.book_id").
		Where("l.actual_return_date IS NULL").
		Scan(&open).Error
	if err != nil {
		return nil, apperr.Storage("overdue snapshot", err)
	}

	loans := lo.Map(open, func(r openLoanRow, _ int) entities.Loan {
		return entities.Loan{ID: r.LoanID, DueDate: r.DueDate, Status: entities.LoanStatusOpen}
	})
	byID := lo.KeyBy(open, func(r openLoanRow) uint { return r.LoanID })

	return lo.Map(lending.DetectOverdue(loans, today), func(o lending.OverdueLoan, _ int) OverdueRow {
		src := byID[o.Loan.ID]
		return OverdueRow{
			BorrowID:    src.LoanID,
			ReaderID:    src.ReaderID,
			ReaderName:  src.ReaderName,
			Phone:       src.Phone,
			BookID:      src.BookID,
			BookName:    src.BookName,
			Author:      src.Author,
			BorrowDate:  src.BorrowDate.Format(dayLayout),
			DueDate:     src.DueDate.Format(dayLayout),
			OverdueDays: o.DaysOverdue,
		}
	}), nil
}

// BorrowTrend buckets loans by day over the last 30 days and by month over
// the last 12 months.
func (a *Aggregator) BorrowTrend(ctx context.Context) (*Trend, error) {
	today := clock.Today(a.clock)
	dailyCutoff := today.AddDate(0, 0, -dailyTrendDays)
	monthlyCutoff := today.AddDate(0, -monthlyTrend, 0)

	var loans []entities.Loan
	err := a.db.WithContext(ctx).
		Select("id", "reader_id", "borrow_date").
		Where("borrow_date >= ?", monthlyCutoff).
		Find(&loans).Error
	if err != nil {
		return nil, apperr.Storage("borrow trend", err)
	}

	daily := bucket(lo.Filter(loans, func(l entities.Loan, _ int) bool {
		return !l.BorrowDate.Before(dailyCutoff)
	}), dayLayout)
	monthly := bucket(loans, monthLayout)

	return &Trend{
		Daily: lo.Map(daily, func(b trendBucket, _ int) DailyBucket {
			return DailyBucket{BorrowDay: b.key, BorrowCount: b.count, UniqueReaders: b.readers}
		}),
		Monthly: lo.Map(monthly, func(b trendBucket, _ int) MonthlyBucket {
			return MonthlyBucket{BorrowMonth: b.key, BorrowCount: b.count, UniqueReaders: b.readers}
		}),
	}, nil
}

type trendBucket struct {
	key     string
	count   int
	readers int
}

func bucket(loans []entities.Loan, layout string) []trendBucket {
	groups := lo.GroupBy(loans, func(l entities.Loan) string { return l.BorrowDate.Format(layout) })
	keys := lo.Keys(groups)
	sort.Strings(keys)

	return lo.Map(keys, func(key string, _ int) trendBucket {
		group := groups[key]
		readers := lo.Uniq(lo.Map(group, func(l entities.Loan, _ int) uint { return l.ReaderID }))
		return trendBucket{key: key, count: len(group), readers: len(readers)}
	})
}

// Overview combines the headline counts of the library.
func (a *Aggregator) Overview(ctx context.Context) (*Overview, error) {
	db := a.db.WithContext(ctx)
	overview := &Overview{TopAuthors: []AuthorCount{}}

	err := db.Table("books").
		Select("COUNT(*) AS total_books, COALESCE(SUM(total_count), 0) AS total_copies").
		Scan(&overview.Books).Error
	if err != nil {
		return nil, apperr.Storage("overview books", err)
	}

	if err := db.Model(&entities.Reader{}).Count(&overview.Readers.TotalReaders).Error; err != nil {
		return nil, apperr.Storage("overview readers", err)
	}

	err = db.Table("loans").
		Select("COUNT(*) AS total_borrows, " +
			"COALESCE(SUM(CASE WHEN actual_return_date IS NULL THEN 1 ELSE 0 END), 0) AS current_borrows, " +
			"COALESCE(SUM(CASE WHEN actual_return_date IS NOT NULL THEN 1 ELSE 0 END), 0) AS returned_borrows").
		Scan(&overview.Borrows).Error
	if err != nil {
		return nil, apperr.Storage("overview borrows", err)
	}

	overdue, err := a.OverdueSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	overview.Overdue.OverdueCount = len(overdue)

	err = db.Table("books").
		Select("author, COUNT(DISTINCT title) AS book_count").
		Group("author").
		Order("book_count DESC, author ASC").
		Limit(topAuthorsLimit).
		Scan(&overview.TopAuthors).Error
	if err != nil {
		return nil, apperr.Storage("overview authors", err)
	}
	return overview, nil
}
