package http

import "github.com/mrlokans/library/internal/database"

// RouterConfig contains all dependencies needed to create the HTTP router.
type RouterConfig struct {
	Database *database.Database
	Version  string

	Lender      Lender
	Ledger      LedgerStore
	Catalog     CatalogStore
	Readers     ReaderStore
	Statistics  StatisticsProvider
	Recommender Recommender

	// Optional; nil disables /api/audit and catalog audit events.
	AuditLog     AuditLog
	AuditRecords CatalogAuditor
}
