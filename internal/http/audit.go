package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/entities"
)

const auditPageSize = 50

type AuditController struct {
	log AuditLog
}

func NewAuditController(log AuditLog) *AuditController {
	return &AuditController{log: log}
}

// Events lists audit events, newest first.
// GET /api/audit?type=&limit=&offset=
func (ac *AuditController) Events(c *gin.Context) {
	limit, offset := parsePagination(c, auditPageSize)
	eventType := entities.AuditEventType(c.Query("type"))

	events, total, err := ac.log.GetEvents(c.Request.Context(), eventType, limit, offset)
	if err != nil {
		respondError(c, err, "audit events")
		return
	}
	respondData(c, PaginatedData{
		Items:   events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}
