package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
)

// AggregateTypeCustomer is the aggregate type for customer events
const AggregateTypeCustomer = "Customer"

// Event type constants
const (
	EventTypeCustomerCreated           = "CustomerCreated"
	EventTypeCustomerUpdated           = "CustomerUpdated"
	EventTypeCustomerActivated         = "CustomerActivated"
	EventTypeCustomerLocked            = "CustomerLocked"
	EventTypeCustomerUnlocked          = "CustomerUnlocked"
	EventTypeCustomerClosed            = "CustomerClosed"
	EventTypeCustomerReopened          = "CustomerReopened"
	EventTypeIdentificationCardCreated = "IdentificationCardCreated"
	EventTypeIdentificationCardDeleted = "IdentificationCardDeleted"
)

// LifecycleEventTypes lists the event types emitted by lifecycle transitions
var LifecycleEventTypes = []string{
	EventTypeCustomerActivated,
	EventTypeCustomerLocked,
	EventTypeCustomerUnlocked,
	EventTypeCustomerClosed,
	EventTypeCustomerReopened,
}

// CustomerCreatedEvent is raised when a customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Identifier string    `json:"identifier"`
	Type       Type      `json:"type"`
	State      State     `json:"state"`
	CreatedBy  uuid.UUID `json:"created_by"`
}

// NewCustomerCreatedEvent creates a CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID, c.TenantID),
		Identifier:      c.Identifier,
		Type:            c.Type,
		State:           c.CurrentState,
		CreatedBy:       c.CreatedBy,
	}
}

// CustomerUpdatedEvent is raised when a customer's profile is replaced
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	Identifier string `json:"identifier"`
}

// NewCustomerUpdatedEvent creates a CustomerUpdatedEvent
func NewCustomerUpdatedEvent(c *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerUpdated, AggregateTypeCustomer, c.ID, c.TenantID),
		Identifier:      c.Identifier,
	}
}

// LifecycleEvent is raised by every successful lifecycle transition.
// The event type is named for the action (CustomerActivated, CustomerLocked, ...).
type LifecycleEvent struct {
	shared.BaseDomainEvent
	Identifier      string     `json:"identifier"`
	Action          Action     `json:"action"`
	FromState       State      `json:"from_state"`
	ToState         State      `json:"to_state"`
	Comment         string     `json:"comment,omitempty"`
	ActedBy         uuid.UUID  `json:"acted_by"`
	ApplicationDate *time.Time `json:"application_date,omitempty"`
}

// NewLifecycleEvent creates the event for a completed transition
func NewLifecycleEvent(c *Customer, t Transition, from State, cmd LifecycleCommand) *LifecycleEvent {
	return &LifecycleEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(t.EventType, AggregateTypeCustomer, c.ID, c.TenantID),
		Identifier:      c.Identifier,
		Action:          cmd.Action,
		FromState:       from,
		ToState:         t.To,
		Comment:         cmd.Comment,
		ActedBy:         cmd.Actor,
		ApplicationDate: c.ApplicationDate,
	}
}

// IdentificationCardEvent is raised when an identification card is added or removed
type IdentificationCardEvent struct {
	shared.BaseDomainEvent
	CustomerIdentifier string `json:"customer_identifier"`
	Number             string `json:"number"`
}

// NewIdentificationCardEvent creates an identification card event of the given type
func NewIdentificationCardEvent(eventType string, c *Customer, card *IdentificationCard) *IdentificationCardEvent {
	return &IdentificationCardEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(eventType, AggregateTypeCustomer, c.ID, c.TenantID),
		CustomerIdentifier: c.Identifier,
		Number:             card.Number,
	}
}
