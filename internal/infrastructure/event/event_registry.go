package event

import (
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/document"
	"github.com/microfinance/backend/internal/domain/task"
)

// RegisterAllEvents registers every domain event the services publish
func RegisterAllEvents(s *EventSerializer) {
	registerCustomerEvents(s)
	registerTaskEvents(s)
	registerDocumentEvents(s)
}

// NewRegisteredSerializer returns a serializer with every domain event registered
func NewRegisteredSerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterAllEvents(s)
	return s
}

func registerCustomerEvents(s *EventSerializer) {
	s.Register(customer.EventTypeCustomerCreated, &customer.CustomerCreatedEvent{})
	s.Register(customer.EventTypeCustomerUpdated, &customer.CustomerUpdatedEvent{})
	for _, eventType := range customer.LifecycleEventTypes {
		s.Register(eventType, &customer.LifecycleEvent{})
	}
	s.Register(customer.EventTypeIdentificationCardCreated, &customer.IdentificationCardEvent{})
	s.Register(customer.EventTypeIdentificationCardDeleted, &customer.IdentificationCardEvent{})
}

func registerTaskEvents(s *EventSerializer) {
	s.Register(task.EventTypeTaskDefinitionCreated, &task.DefinitionEvent{})
	s.Register(task.EventTypeTaskDefinitionUpdated, &task.DefinitionEvent{})
	s.Register(task.EventTypeTaskAttached, &task.InstanceEvent{})
	s.Register(task.EventTypeTaskExecuted, &task.InstanceEvent{})
}

func registerDocumentEvents(s *EventSerializer) {
	s.Register(document.EventTypeDocumentCreated, &document.DocumentEvent{})
	s.Register(document.EventTypeDocumentChanged, &document.DocumentEvent{})
	s.Register(document.EventTypeDocumentCompleted, &document.DocumentEvent{})
	s.Register(document.EventTypeDocumentDeleted, &document.DocumentEvent{})
	s.Register(document.EventTypeDocumentPageAdded, &document.PageEvent{})
	s.Register(document.EventTypeDocumentPageDeleted, &document.PageEvent{})
}
