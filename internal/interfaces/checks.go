package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/database/catalog"
	"github.com/mrlokans/library/internal/database/inventory"
	"github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/lending"
	"github.com/mrlokans/library/internal/recommend"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/stats"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.LedgerStore = (*inventory.Repository)(nil)
var _ lending.Ledger = (*inventory.Repository)(nil)

var _ http.CatalogStore = (*catalog.Repository)(nil)
var _ http.ReaderStore = (*catalog.Repository)(nil)

// =============================================================================
// Lending
// =============================================================================

var _ http.Lender = (*lending.Service)(nil)

// =============================================================================
// Read-side
// =============================================================================

var _ http.StatisticsProvider = (*stats.Aggregator)(nil)
var _ scheduler.OverdueSource = (*stats.Aggregator)(nil)
var _ http.Recommender = (*recommend.Scorer)(nil)

// =============================================================================
// Audit
// =============================================================================

var _ http.AuditLog = (*audit.Service)(nil)
var _ http.CatalogAuditor = (*audit.Service)(nil)
var _ lending.AuditRecorder = (*audit.Service)(nil)
var _ scheduler.AuditEventCleaner = (*audit.Service)(nil)
