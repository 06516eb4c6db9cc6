// Package apperr defines the error kinds shared by the ledger, lending,
// statistics and recommendation packages.
//
// Callers wrap one of the sentinel errors with context and test the kind with
// errors.Is:
//
//	if errors.Is(err, apperr.ErrCapacityExceeded) { ... }
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an unresolved reader, book, loan or category id.
	ErrNotFound = errors.New("not found")
	// ErrCapacityExceeded reports a borrow against a book with no available copies.
	ErrCapacityExceeded = errors.New("no copies available")
	// ErrAlreadyReturned reports a return on a loan that is already closed.
	ErrAlreadyReturned = errors.New("loan already returned")
	// ErrConflict reports a mutation that would break a cross-entity rule,
	// such as deleting a book with open loans.
	ErrConflict = errors.New("conflict")
	// ErrValidation reports a missing or malformed required input.
	ErrValidation = errors.New("validation failed")
	// ErrStorage reports a transport or transaction failure of the backing store.
	ErrStorage = errors.New("storage failure")
)

// NotFound wraps ErrNotFound for the given entity and id.
func NotFound(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// CapacityExceeded wraps ErrCapacityExceeded for the given book.
func CapacityExceeded(bookID uint) error {
	return fmt.Errorf("book %d: %w", bookID, ErrCapacityExceeded)
}

// AlreadyReturned wraps ErrAlreadyReturned for the given loan.
func AlreadyReturned(loanID uint) error {
	return fmt.Errorf("loan %d: %w", loanID, ErrAlreadyReturned)
}

// Conflict wraps ErrConflict with a reason.
func Conflict(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrConflict)
}

// Validation wraps ErrValidation with a reason.
func Validation(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrValidation)
}

// Storage wraps a backing store error. Errors that already carry a kind from
// this package are returned unchanged so business outcomes raised inside a
// transaction keep their meaning.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsKnown(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// IsKnown reports whether err carries one of the kinds defined here.
func IsKnown(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrCapacityExceeded, ErrAlreadyReturned, ErrConflict, ErrValidation, ErrStorage} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
