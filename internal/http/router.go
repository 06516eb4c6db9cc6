package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	readers := NewReadersController(cfg.Readers)
	api.POST("/register_reader", readers.Register)
	api.GET("/list_readers", readers.List)

	books := NewBooksController(cfg.Catalog, cfg.Ledger, cfg.AuditRecords)
	api.POST("/add_book", books.Add)
	api.PUT("/update_book/:id", books.Update)
	api.DELETE("/delete_book/:id", books.Delete)
	api.GET("/list_books", books.List)
	api.GET("/search_books", books.Search)
	api.GET("/search_by_author", books.SearchByAuthor)

	lending := NewLendingController(cfg.Lender, cfg.Catalog)
	api.POST("/borrow_book", lending.Borrow)
	api.POST("/return_book", lending.Return)
	api.GET("/borrow_records", lending.Records)

	statistics := NewStatisticsController(cfg.Statistics)
	statsGroup := api.Group("/statistics")
	statsGroup.GET("/book_popularity", statistics.BookPopularity)
	statsGroup.GET("/reader_activity", statistics.ReaderActivity)
	statsGroup.GET("/category_distribution", statistics.CategoryDistribution)
	statsGroup.GET("/overdue_books", statistics.OverdueBooks)
	statsGroup.GET("/borrow_trend", statistics.BorrowTrend)
	statsGroup.GET("/library_overview", statistics.LibraryOverview)

	recommend := NewRecommendController(cfg.Recommender)
	api.GET("/recommend/books", recommend.ForReader)
	api.GET("/recommend/similar_books", recommend.Similar)

	if cfg.AuditLog != nil {
		auditController := NewAuditController(cfg.AuditLog)
		api.GET("/audit", auditController.Events)
	}

	return router
}
