package http

import "github.com/gin-gonic/gin"

type StatisticsController struct {
	stats StatisticsProvider
}

func NewStatisticsController(stats StatisticsProvider) *StatisticsController {
	return &StatisticsController{stats: stats}
}

// GET /api/statistics/book_popularity
func (sc *StatisticsController) BookPopularity(c *gin.Context) {
	rows, err := sc.stats.Popularity(c.Request.Context())
	respondRollup(c, rows, err, "book popularity")
}

// GET /api/statistics/reader_activity
func (sc *StatisticsController) ReaderActivity(c *gin.Context) {
	rows, err := sc.stats.ReaderActivity(c.Request.Context())
	respondRollup(c, rows, err, "reader activity")
}

// GET /api/statistics/category_distribution
func (sc *StatisticsController) CategoryDistribution(c *gin.Context) {
	rows, err := sc.stats.CategoryDistribution(c.Request.Context())
	respondRollup(c, rows, err, "category distribution")
}

// GET /api/statistics/overdue_books
func (sc *StatisticsController) OverdueBooks(c *gin.Context) {
	rows, err := sc.stats.OverdueSnapshot(c.Request.Context())
	respondRollup(c, rows, err, "overdue books")
}

// GET /api/statistics/borrow_trend
func (sc *StatisticsController) BorrowTrend(c *gin.Context) {
	trend, err := sc.stats.BorrowTrend(c.Request.Context())
	respondRollup(c, trend, err, "borrow trend")
}

// GET /api/statistics/library_overview
func (sc *StatisticsController) LibraryOverview(c *gin.Context) {
	overview, err := sc.stats.Overview(c.Request.Context())
	respondRollup(c, overview, err, "library overview")
}

func respondRollup(c *gin.Context, data any, err error, op string) {
	if err != nil {
		respondError(c, err, op)
		return
	}
	respondData(c, data)
}
