// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - LedgerStore: Copy bookkeeping, add copies and remove books (internal/http/stores.go)
//   - CatalogStore: Book list, search, update and loan records (internal/http/stores.go)
//   - ReaderStore: Reader registration (internal/http/stores.go)
//   - Ledger: Conditional reserve/release of a copy inside a loan transaction (internal/lending/service.go)
//
// ## Lending
//
//   - Lender: Borrow and return (internal/http/stores.go)
//   - AuditRecorder: Borrow/return outcomes (internal/lending/service.go)
//
// ## Read-side Interfaces
//
//   - StatisticsProvider: Rollups over committed loans (internal/http/stores.go)
//   - OverdueSource: Overdue snapshot for the scheduled report (internal/scheduler/overdue_report.go)
//   - Recommender: Reader and seed recommendations (internal/http/stores.go)
//
// # Ledger Writes
//
// Every change to available_count goes through a conditional update executed on
// the transaction handle passed in by the caller:
//
//	reserved, err := ledger.ReserveCopy(tx, bookID)
//	if !reserved {
//	    return apperr.CapacityExceeded(bookID)
//	}
//
// A read-then-write of available_count outside that statement is never correct
// under concurrent borrows.
//
// # Adding a New Rollup
//
//  1. Add the row type and method to internal/stats/stats.go
//
//     func (a *Aggregator) PublisherDistribution(ctx context.Context) ([]PublisherRow, error)
//
//  2. Extend StatisticsProvider in internal/http/stores.go
//
//  3. Add the handler to internal/http/statistics.go and register it in router.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
