package task

import (
	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
)

// Aggregate types for task events
const (
	AggregateTypeTaskDefinition = "TaskDefinition"
	AggregateTypeTaskInstance   = "TaskInstance"
)

// Event type constants
const (
	EventTypeTaskDefinitionCreated = "TaskDefinitionCreated"
	EventTypeTaskDefinitionUpdated = "TaskDefinitionUpdated"
	EventTypeTaskAttached          = "TaskAttached"
	EventTypeTaskExecuted          = "TaskExecuted"
)

// DefinitionEvent is raised when the catalog changes
type DefinitionEvent struct {
	shared.BaseDomainEvent
	Identifier string `json:"identifier"`
	Type       Type   `json:"type"`
	Mandatory  bool   `json:"mandatory"`
	Predefined bool   `json:"predefined"`
}

// NewDefinitionEvent creates a catalog event of the given type
func NewDefinitionEvent(eventType string, d *Definition) *DefinitionEvent {
	return &DefinitionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeTaskDefinition, d.ID, d.TenantID),
		Identifier:      d.Identifier,
		Type:            d.Type,
		Mandatory:       d.Mandatory,
		Predefined:      d.Predefined,
	}
}

// InstanceEvent is raised when a task is attached to or executed for a customer
type InstanceEvent struct {
	shared.BaseDomainEvent
	CustomerIdentifier string     `json:"customer_identifier"`
	TaskIdentifier     string     `json:"task_identifier"`
	ExecutedBy         *uuid.UUID `json:"executed_by,omitempty"`
}

// NewInstanceEvent creates an instance event of the given type
func NewInstanceEvent(eventType string, i *Instance, customerIdentifier, taskIdentifier string) *InstanceEvent {
	return &InstanceEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(eventType, AggregateTypeTaskInstance, i.ID, i.TenantID),
		CustomerIdentifier: customerIdentifier,
		TaskIdentifier:     taskIdentifier,
		ExecutedBy:         i.ExecutedBy,
	}
}
