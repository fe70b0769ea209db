package task

import (
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
)

// Error codes for task rule violations
const (
	CodePreconditionFailed = "TASK_PRECONDITION_FAILED"
	CodeAlreadyExecuted    = "TASK_ALREADY_EXECUTED"
)

// Instance links a definition to a customer. It is open until executed.
type Instance struct {
	shared.BaseEntity
	TenantID     uuid.UUID
	CustomerID   uuid.UUID
	DefinitionID uuid.UUID
	Comment      string
	CreatedOn    time.Time
	ExecutedBy   *uuid.UUID
	ExecutedOn   *time.Time
}

// NewInstance attaches def to a customer
func NewInstance(customerID uuid.UUID, def *Definition) *Instance {
	return &Instance{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     def.TenantID,
		CustomerID:   customerID,
		DefinitionID: def.ID,
		CreatedOn:    time.Now(),
	}
}

// IsOpen reports whether the instance has not been executed yet
func (i *Instance) IsOpen() bool {
	return i.ExecutedBy == nil
}

// Execute marks the instance as executed by actor
func (i *Instance) Execute(actor uuid.UUID, comment string) error {
	if !i.IsOpen() {
		return shared.NewDomainError(CodeAlreadyExecuted, "task has already been executed")
	}
	now := time.Now()
	i.ExecutedBy = &actor
	i.ExecutedOn = &now
	if comment != "" {
		i.Comment = comment
	}
	return nil
}

// Assignment pairs an instance with its definition
type Assignment struct {
	Instance   Instance
	Definition Definition
}
