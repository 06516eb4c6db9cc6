package http

import "github.com/gin-gonic/gin"

type RecommendController struct {
	recommender Recommender
}

func NewRecommendController(recommender Recommender) *RecommendController {
	return &RecommendController{recommender: recommender}
}

// ForReader recommends books from a reader's history.
// GET /api/recommend/books?reader_id=
func (rc *RecommendController) ForReader(c *gin.Context) {
	readerID, ok := parseOptionalQueryID(c, "reader_id")
	if !ok {
		return
	}
	books, err := rc.recommender.ByReader(c.Request.Context(), readerID)
	if err != nil {
		respondError(c, err, "recommend books")
		return
	}
	respondData(c, books)
}

// Similar recommends books like the given one.
// GET /api/recommend/similar_books?book_id=
func (rc *RecommendController) Similar(c *gin.Context) {
	bookID, ok := parseOptionalQueryID(c, "book_id")
	if !ok {
		return
	}
	books, err := rc.recommender.BySeed(c.Request.Context(), bookID)
	if err != nil {
		respondError(c, err, "similar books")
		return
	}
	respondData(c, books)
}
