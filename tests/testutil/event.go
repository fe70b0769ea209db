package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
)

// RecordingHandler is a shared.EventHandler that remembers what it saw
type RecordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewRecordingHandler creates a handler subscribed to eventTypes
func NewRecordingHandler(eventTypes ...string) *RecordingHandler {
	return &RecordingHandler{eventTypes: eventTypes}
}

// EventTypes implements shared.EventHandler
func (h *RecordingHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle implements shared.EventHandler
func (h *RecordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of the handled events
func (h *RecordingHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}

// Count returns the number of handled events
func (h *RecordingHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// Fail makes subsequent Handle calls return err
func (h *RecordingHandler) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// SampleEvent is a bare domain event for bus and outbox tests
type SampleEvent struct {
	shared.BaseDomainEvent
	Note string `json:"note"`
}

// NewSampleEvent creates a SampleEvent on a fresh aggregate
func NewSampleEvent(eventType string, tenantID uuid.UUID) *SampleEvent {
	return &SampleEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Sample", uuid.New(), tenantID),
		Note:            "sample",
	}
}
