// Package recommend ranks catalog entries for a reader or a seed book.
//
// Queries are composed with goqu and run through gorm as prepared statements.
// Both entry points are reads only.
package recommend

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"   // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/apperr"
	"github.com/mrlokans/library/internal/entities"
)

const (
	readerLimit = 10
	seedLimit   = 8
	seedMinimum = 5
	// Size of the literal exclusion pool used when backfilling seed results.
	backfillPoolSize = 10
)

// History is the distinct categories and authors a reader has borrowed.
type History struct {
	CategoryIDs []uint
	Authors     []string
}

// HistoryPredicate matches books sharing a category or an author with h.
// An empty history yields an empty expression, which filters nothing.
func HistoryPredicate(h History) exp.ExpressionList {
	var or []exp.Expression
	if len(h.CategoryIDs) > 0 {
		or = append(or, goqu.I("b.category_id").In(h.CategoryIDs))
	}
	if len(h.Authors) > 0 {
		or = append(or, goqu.I("b.author").In(h.Authors))
	}
	return goqu.Or(or...)
}

// SeedPredicate matches books sharing the seed's category or author.
func SeedPredicate(seed entities.Book) exp.ExpressionList {
	return goqu.Or(
		goqu.I("b.category_id").Eq(seed.CategoryID),
		goqu.I("b.author").Eq(seed.Author),
	)
}

type Scorer struct {
	db      *gorm.DB
	dialect goqu.DialectWrapper
}

// NewScorer builds a scorer for the given goqu dialect ("sqlite3" or "mysql").
func NewScorer(db *gorm.DB, dialect string) *Scorer {
	return &Scorer{db: db, dialect: goqu.Dialect(dialect)}
}

// availableBooks selects every book with a free copy in BookRow shape.
func (s *Scorer) availableBooks() *goqu.SelectDataset {
	loanCounts := s.dialect.From("loans").
		Select(goqu.C("book_id"), goqu.COUNT(goqu.Star()).As("loan_count")).
		GroupBy(goqu.C("book_id"))

	return s.dialect.From(goqu.T("books").As("b")).
		Prepared(true).
		Select(
			goqu.I("b.id").As("book_id"),
			goqu.I("b.title").As("book_name"),
			goqu.I("b.author").As("author"),
			goqu.I("b.publisher").As("publisher"),
			goqu.I("b.category_id").As("category_id"),
			goqu.I("b.total_count").As("total_count"),
			goqu.I("b.available_count").As("available_count"),
			goqu.COALESCE(goqu.I("c.name"), "").As("category_name"),
			goqu.COALESCE(goqu.I("lc.loan_count"), 0).As("borrow_count"),
		).
		LeftJoin(goqu.T("categories").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("b.category_id")))).
		LeftJoin(loanCounts.As("lc"), goqu.On(goqu.I("lc.book_id").Eq(goqu.I("b.id")))).
		Where(goqu.I("b.available_count").Gt(0))
}

func mostBorrowed(ds *goqu.SelectDataset) *goqu.SelectDataset {
	return ds.Order(goqu.I("borrow_count").Desc(), goqu.I("b.id").Asc())
}

func (s *Scorer) scan(ctx context.Context, ds *goqu.SelectDataset) ([]entities.BookRow, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	rows := []entities.BookRow{}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type historyRow struct {
	CategoryID uint   `gorm:"column:category_id"`
	Author     string `gorm:"column:author"`
}

// ReaderHistory returns the distinct (category, author) pairs of all the
// reader's loans. ok is false when the reader has never borrowed.
func (s *Scorer) ReaderHistory(ctx context.Context, readerID uint) (History, bool, error) {
	ds := s.dialect.From(goqu.T("loans").As("l")).
		Prepared(true).
		SelectDistinct(goqu.I("b.category_id").As("category_id"), goqu.I("b.author").As("author")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id")))).
		Where(goqu.I("l.reader_id").Eq(readerID))

	query, args, err := ds.ToSQL()
	if err != nil {
		return History{}, false, err
	}
	var rows []historyRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return History{}, false, err
	}
	if len(rows) == 0 {
		return History{}, false, nil
	}

	return History{
		CategoryIDs: lo.Uniq(lo.FilterMap(rows, func(r historyRow, _ int) (uint, bool) {
			return r.CategoryID, r.CategoryID != 0
		})),
		Authors: lo.Uniq(lo.FilterMap(rows, func(r historyRow, _ int) (string, bool) {
			return r.Author, r.Author != ""
		})),
	}, true, nil
}

// ByReader recommends up to 10 available books for a reader. Readers without
// history get the most borrowed books; others get books sharing a category or
// author with their history, excluding books they hold, most copies first.
func (s *Scorer) ByReader(ctx context.Context, readerID uint) ([]entities.BookRow, error) {
	if readerID == 0 {
		return nil, apperr.Validation("reader_id is required")
	}

	history, ok, err := s.ReaderHistory(ctx, readerID)
	if err != nil {
		return nil, apperr.Storage("reader history", err)
	}

	var ds *goqu.SelectDataset
	if !ok {
		ds = mostBorrowed(s.availableBooks())
	} else {
		held := s.dialect.From("loans").
			Select(goqu.C("book_id")).
			Where(goqu.C("reader_id").Eq(readerID), goqu.C("actual_return_date").IsNull())

		ds = s.availableBooks().
			Where(HistoryPredicate(history), goqu.I("b.id").NotIn(held)).
			Order(goqu.I("b.available_count").Desc(), goqu.I("b.id").Asc())
	}

	rows, err := s.scan(ctx, ds.Limit(readerLimit))
	if err != nil {
		return nil, apperr.Storage("recommend by reader", err)
	}
	return rows, nil
}

// BySeed recommends up to 8 available books similar to the seed. When fewer
// than 5 share its category or author, the rest are backfilled with the most
// borrowed books outside the first 10 matching ids.
func (s *Scorer) BySeed(ctx context.Context, bookID uint) ([]entities.BookRow, error) {
	if bookID == 0 {
		return nil, apperr.Validation("book_id is required")
	}

	var seed entities.Book
	err := s.db.WithContext(ctx).Select("id", "category_id", "author").First(&seed, bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("book", bookID)
	}
	if err != nil {
		return nil, apperr.Storage("recommend by seed", err)
	}

	notSeed := goqu.I("b.id").Neq(seed.ID)
	similar, err := s.scan(ctx, mostBorrowed(s.availableBooks()).
		Where(notSeed, SeedPredicate(seed)).
		Limit(seedLimit))
	if err != nil {
		return nil, apperr.Storage("recommend by seed", err)
	}
	if len(similar) >= seedMinimum {
		return similar, nil
	}

	backfill, err := s.scan(ctx, mostBorrowed(s.availableBooks()).
		Where(notSeed, goqu.I("b.id").NotIn(s.backfillPool(seed))).
		Where(excludeIDs(lo.Map(similar, func(r entities.BookRow, _ int) uint { return r.BookID }))).
		Limit(uint(seedLimit-len(similar))))
	if err != nil {
		return nil, apperr.Storage("recommend backfill", err)
	}
	return append(similar, backfill...), nil
}

// backfillPool is the first 10 ids of books matching the seed, available or
// not, wrapped in a derived table so MySQL accepts the LIMIT.
func (s *Scorer) backfillPool(seed entities.Book) *goqu.SelectDataset {
	matching := s.dialect.From("books").
		Select(goqu.C("id")).
		Where(goqu.Or(goqu.C("category_id").Eq(seed.CategoryID), goqu.C("author").Eq(seed.Author))).
		Order(goqu.C("id").Asc()).
		Limit(backfillPoolSize)
	return s.dialect.From(matching.As("excluded")).Select(goqu.C("id"))
}

func excludeIDs(ids []uint) exp.ExpressionList {
	if len(ids) == 0 {
		return goqu.And()
	}
	return goqu.And(goqu.I("b.id").NotIn(ids))
}
