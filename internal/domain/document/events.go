package document

import (
	"github.com/microfinance/backend/internal/domain/shared"
)

// AggregateTypeDocument is the aggregate type for document events
const AggregateTypeDocument = "Document"

// Event type constants
const (
	EventTypeDocumentCreated     = "DocumentCreated"
	EventTypeDocumentChanged     = "DocumentChanged"
	EventTypeDocumentPageAdded   = "DocumentPageAdded"
	EventTypeDocumentPageDeleted = "DocumentPageDeleted"
	EventTypeDocumentCompleted   = "DocumentCompleted"
	EventTypeDocumentDeleted     = "DocumentDeleted"
)

// DocumentEvent is raised when a document is created, changed, completed or deleted
type DocumentEvent struct {
	shared.BaseDomainEvent
	Identifier  string `json:"identifier"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
}

// NewDocumentEvent creates a document event of the given type
func NewDocumentEvent(eventType string, d *Document) *DocumentEvent {
	return &DocumentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeDocument, d.ID, d.TenantID),
		Identifier:      d.Identifier,
		Description:     d.Description,
		Completed:       d.Completed,
	}
}

// PageEvent is raised when a page is added or removed
type PageEvent struct {
	shared.BaseDomainEvent
	Identifier string `json:"identifier"`
	PageNumber int    `json:"page_number"`
}

// NewPageEvent creates a page event of the given type
func NewPageEvent(eventType string, d *Document, n int) *PageEvent {
	return &PageEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeDocument, d.ID, d.TenantID),
		Identifier:      d.Identifier,
		PageNumber:      n,
	}
}
