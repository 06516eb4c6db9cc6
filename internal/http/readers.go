package http

import "github.com/gin-gonic/gin"

type registerReaderRequest struct {
	Name   string `json:"name" binding:"required"`
	Gender string `json:"gender"`
	Phone  string `json:"phone"`
}

type ReadersController struct {
	store ReaderStore
}

func NewReadersController(store ReaderStore) *ReadersController {
	return &ReadersController{store: store}
}

// Register creates a reader.
// POST /api/register_reader
func (rc *ReadersController) Register(c *gin.Context) {
	var req registerReaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	reader, err := rc.store.RegisterReader(c.Request.Context(), req.Name, req.Gender, req.Phone)
	if err != nil {
		respondError(c, err, "register reader")
		return
	}
	respondMessage(c, "reader registered", reader)
}

// List returns every reader.
// GET /api/list_readers
func (rc *ReadersController) List(c *gin.Context) {
	readers, err := rc.store.ListReaders(c.Request.Context())
	if err != nil {
		respondError(c, err, "list readers")
		return
	}
	respondData(c, readers)
}
