package http

import (
	"github.com/gin-gonic/gin"
)

type borrowRequest struct {
	ReaderID uint `json:"reader_id" binding:"required"`
	BookID   uint `json:"book_id" binding:"required"`
}

type returnRequest struct {
	BorrowID uint `json:"borrow_id" binding:"required"`
}

type LendingController struct {
	lender  Lender
	catalog CatalogStore
}

func NewLendingController(lender Lender, catalog CatalogStore) *LendingController {
	return &LendingController{lender: lender, catalog: catalog}
}

// Borrow opens a loan.
// POST /api/borrow_book
func (lc *LendingController) Borrow(c *gin.Context) {
	var req borrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "reader_id and book_id are required")
		return
	}

	loan, err := lc.lender.Borrow(c.Request.Context(), req.ReaderID, req.BookID)
	if err != nil {
		respondError(c, err, "borrow")
		return
	}
	respondMessage(c, "book borrowed", loan)
}

// Return closes a loan.
// POST /api/return_book
func (lc *LendingController) Return(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "borrow_id is required")
		return
	}

	loan, err := lc.lender.Return(c.Request.Context(), req.BorrowID)
	if err != nil {
		respondError(c, err, "return")
		return
	}
	respondMessage(c, "book returned", loan)
}

// Records lists every loan, newest first.
// GET /api/borrow_records
func (lc *LendingController) Records(c *gin.Context) {
	records, err := lc.catalog.LoanRecords(c.Request.Context())
	if err != nil {
		respondError(c, err, "borrow records")
		return
	}
	respondData(c, records)
}
