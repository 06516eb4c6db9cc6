// Package lending drives loans through OPEN and RETURNED and keeps the
// inventory ledger in step with them.
//
// Borrow and Return each run in one transaction: the ledger update and the
// loan row are committed together or not at all.
package lending

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/apperr"
	"github.com/mrlokans/library/internal/clock"
	"github.com/mrlokans/library/internal/entities"
)

// Ledger adjusts available copies inside the caller's transaction.
type Ledger interface {
	ReserveCopy(tx *gorm.DB, bookID uint) (bool, error)
	ReleaseCopy(tx *gorm.DB, bookID uint) error
}

// AuditRecorder receives lending outcomes. Implementations must not block.
type AuditRecorder interface {
	LogBorrow(ctx context.Context, readerID, bookID, loanID uint, err error)
	LogReturn(ctx context.Context, loanID, bookID uint, err error)
}

type Service struct {
	db             *gorm.DB
	ledger         Ledger
	clock          clock.Clock
	loanPeriodDays int
	audit          AuditRecorder
}

// NewService creates a lending service. recorder may be nil.
func NewService(db *gorm.DB, ledger Ledger, c clock.Clock, loanPeriodDays int, recorder AuditRecorder) *Service {
	return &Service{
		db:             db,
		ledger:         ledger,
		clock:          c,
		loanPeriodDays: loanPeriodDays,
		audit:          recorder,
	}
}

// Borrow reserves a copy of the book and opens a loan for the reader.
func (s *Service) Borrow(ctx context.Context, readerID, bookID uint) (*entities.Loan, error) {
	if readerID == 0 || bookID == 0 {
		return nil, apperr.Validation("reader_id and book_id are required")
	}

	today := clock.Today(s.clock)
	var loan entities.Loan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &entities.Reader{}, "reader", readerID); err != nil {
			return err
		}
		if err := mustExist(tx, &entities.Book{}, "book", bookID); err != nil {
			return err
		}

		reserved, err := s.ledger.ReserveCopy(tx, bookID)
		if err != nil {
			return err
		}
		if !reserved {
			return apperr.CapacityExceeded(bookID)
		}

		loan = entities.Loan{
			ReaderID:   readerID,
			BookID:     bookID,
			BorrowDate: today,
			DueDate:    today.AddDate(0, 0, s.loanPeriodDays),
			Status:     entities.LoanStatusOpen,
		}
		return tx.Create(&loan).Error
	})
	err = apperr.Storage("borrow", err)

	if s.audit != nil {
		s.audit.LogBorrow(ctx, readerID, bookID, loan.ID, err)
	}
	entry := log.WithFields(log.Fields{"reader_id": readerID, "book_id": bookID})
	if err != nil {
		entry.WithError(err).Info("Borrow rejected")
		return nil, err
	}
	entry.WithField("loan_id", loan.ID).Info("Book borrowed")
	return &loan, nil
}

// Return closes an open loan and releases its copy.
func (s *Service) Return(ctx context.Context, loanID uint) (*entities.Loan, error) {
	if loanID == 0 {
		return nil, apperr.Validation("borrow_id is required")
	}

	today := clock.Today(s.clock)
	var loan entities.Loan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&loan, loanID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("loan", loanID)
		}
		if err != nil {
			return err
		}

		res := tx.Model(&entities.Loan{}).
			Where("id = ? AND actual_return_date IS NULL", loanID).
			Updates(map[string]any{
				"actual_return_date": today,
				"status":             entities.LoanStatusReturned,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.AlreadyReturned(loanID)
		}

		return s.ledger.ReleaseCopy(tx, loan.BookID)
	})
	err = apperr.Storage("return", err)

	if s.audit != nil {
		s.audit.LogReturn(ctx, loanID, loan.BookID, err)
	}
	entry := log.WithField("loan_id", loanID)
	if err != nil {
		entry.WithError(err).Info("Return rejected")
		return nil, err
	}

	loan.ActualReturnDate = &today
	loan.Status = entities.LoanStatusReturned
	entry.WithField("book_id", loan.BookID).Info("Book returned")
	return &loan, nil
}

// OpenLoans returns every loan without a return date.
func (s *Service) OpenLoans(ctx context.Context) ([]entities.Loan, error) {
	loans := []entities.Loan{}
	err := s.db.WithContext(ctx).
		Where("actual_return_date IS NULL").
		Order("id ASC").
		Find(&loans).Error
	if err != nil {
		return nil, apperr.Storage("open loans", err)
	}
	return loans, nil
}

func mustExist(tx *gorm.DB, model any, entity string, id uint) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}
