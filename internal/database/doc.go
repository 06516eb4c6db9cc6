// Package database provides the data access layer for the library.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or mysql), migrations
//	├── inventory/       # Per-book total/available copy ledger
//	├── catalog/         # Book, category, reader and loan record reads/writes
//	└── audit/           # Lending audit trail
//
// The loan state machine lives in internal/lending and drives the inventory
// repository inside its own transactions.
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type over *gorm.DB:
//
//	db, err := database.Open(cfg.Database)
//
//	ledger := inventory.NewRepository(db.DB)
//	catalogRepo := catalog.NewRepository(db.DB)
//
//	book, err := ledger.AddCopies(ctx, inventory.NewCopies{Title: "Dune", Author: "Herbert", CategoryName: "SF", Count: 2})
//
// Repositories that must join a caller's transaction accept a *gorm.DB
// argument; pass the tx handed to db.Transaction.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add compile-time interface check in internal/interfaces
package database
