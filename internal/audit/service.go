package audit

import (
	"context"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/entities"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type requestIDKey struct{}

// WithRequestID attaches a correlation id that is copied onto every event
// recorded with the returned context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			log.WithError(err).WithField("action", event.Action).Warn("Failed to log audit event")
		}
	}()
}

// Wait blocks until every pending asynchronous event is written.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogBorrow records a borrow attempt.
func (s *Service) LogBorrow(ctx context.Context, readerID, bookID, loanID uint, err error) {
	event := newEvent(ctx, entities.AuditEventLending, "borrow", "loan", err)
	event.Description = "Borrow book"
	if loanID != 0 {
		event.EntityID = &loanID
	}
	event.Metadata = metadata(map[string]any{"reader_id": readerID, "book_id": bookID})
	s.LogAsync(event)
}

// LogReturn records a return attempt.
func (s *Service) LogReturn(ctx context.Context, loanID, bookID uint, err error) {
	event := newEvent(ctx, entities.AuditEventLending, "return", "loan", err)
	event.Description = "Return book"
	event.EntityID = &loanID
	if bookID != 0 {
		event.Metadata = metadata(map[string]any{"book_id": bookID})
	}
	s.LogAsync(event)
}

// LogAddCopies records copies added to the inventory.
func (s *Service) LogAddCopies(ctx context.Context, bookID uint, title string, count int, err error) {
	event := newEvent(ctx, entities.AuditEventInventory, "add_copies", "book", err)
	event.Description = truncate("Add copies: "+title, 500)
	if bookID != 0 {
		event.EntityID = &bookID
	}
	event.Metadata = metadata(map[string]any{"count": count})
	s.LogAsync(event)
}

// LogRemoveBook records a book removal attempt.
func (s *Service) LogRemoveBook(ctx context.Context, bookID uint, err error) {
	event := newEvent(ctx, entities.AuditEventInventory, "remove_book", "book", err)
	event.Description = "Remove book"
	event.EntityID = &bookID
	s.LogAsync(event)
}

// LogUpdateBook records a catalog edit.
func (s *Service) LogUpdateBook(ctx context.Context, bookID uint, err error) {
	event := newEvent(ctx, entities.AuditEventCatalog, "update_book", "book", err)
	event.Description = "Update book"
	event.EntityID = &bookID
	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, eventType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func newEvent(ctx context.Context, eventType entities.AuditEventType, action, entityType string, err error) *entities.AuditEvent {
	event := &entities.AuditEvent{
		EventType:  eventType,
		Action:     action,
		EntityType: entityType,
		RequestID:  RequestID(ctx),
		Status:     entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	return event
}

func metadata(fields map[string]any) string {
	b, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
