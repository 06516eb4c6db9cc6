package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/database/catalog"
	"github.com/mrlokans/library/internal/database/inventory"
)

type addBookRequest struct {
	BookID       uint   `json:"book_id"`
	BookName     string `json:"book_name" binding:"required_without=BookID"`
	Author       string `json:"author"`
	Publisher    string `json:"publisher"`
	CategoryName string `json:"category_name"`
	TotalCount   *int   `json:"total_count"`
}

type updateBookRequest struct {
	BookName     string `json:"book_name" binding:"required"`
	Author       string `json:"author"`
	Publisher    string `json:"publisher"`
	CategoryName string `json:"category_name"`
}

type BooksController struct {
	catalog CatalogStore
	ledger  LedgerStore
	audit   CatalogAuditor
}

func NewBooksController(catalog CatalogStore, ledger LedgerStore, auditor CatalogAuditor) *BooksController {
	return &BooksController{
		catalog: catalog,
		ledger:  ledger,
		audit:   auditor,
	}
}

// List returns every book.
// GET /api/list_books
func (bc *BooksController) List(c *gin.Context) {
	books, err := bc.catalog.ListBooks(c.Request.Context())
	if err != nil {
		respondError(c, err, "list books")
		return
	}
	respondData(c, books)
}

// Search matches a keyword against title, author and publisher.
// GET /api/search_books?keyword=
func (bc *BooksController) Search(c *gin.Context) {
	books, err := bc.catalog.SearchBooks(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		respondError(c, err, "search books")
		return
	}
	respondData(c, books)
}

// SearchByAuthor matches a partial author name.
// GET /api/search_by_author?author=
func (bc *BooksController) SearchByAuthor(c *gin.Context) {
	books, err := bc.catalog.SearchByAuthor(c.Request.Context(), c.Query("author"))
	if err != nil {
		respondError(c, err, "search by author")
		return
	}
	respondData(c, books)
}

// Add adds copies to an existing book or creates it. total_count defaults to 1.
// POST /api/add_book
func (bc *BooksController) Add(c *gin.Context) {
	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_name is required")
		return
	}
	count := 1
	if req.TotalCount != nil {
		count = *req.TotalCount
	}

	book, err := bc.ledger.AddCopies(c.Request.Context(), inventory.NewCopies{
		BookID:       req.BookID,
		Title:        req.BookName,
		Author:       req.Author,
		Publisher:    req.Publisher,
		CategoryName: req.CategoryName,
		Count:        count,
	})
	if bc.audit != nil {
		var bookID uint
		if book != nil {
			bookID = book.ID
		}
		bc.audit.LogAddCopies(c.Request.Context(), bookID, req.BookName, count, err)
	}
	if err != nil {
		respondError(c, err, "add book")
		return
	}
	respondMessage(c, "book added", book)
}

// Update rewrites the descriptive fields of a book.
// PUT /api/update_book/:id
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_name is required")
		return
	}

	row, err := bc.catalog.UpdateBook(c.Request.Context(), id, catalog.BookUpdate{
		Title:        req.BookName,
		Author:       req.Author,
		Publisher:    req.Publisher,
		CategoryName: req.CategoryName,
	})
	if bc.audit != nil {
		bc.audit.LogUpdateBook(c.Request.Context(), id, err)
	}
	if err != nil {
		respondError(c, err, "update book")
		return
	}
	respondMessage(c, "book updated", row)
}

// Delete removes a book that has no open loans.
// DELETE /api/delete_book/:id
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := bc.ledger.RemoveBook(c.Request.Context(), id)
	if bc.audit != nil {
		bc.audit.LogRemoveBook(c.Request.Context(), id, err)
	}
	if err != nil {
		respondError(c, err, "delete book")
		return
	}
	respondMessage(c, "book deleted", nil)
}
