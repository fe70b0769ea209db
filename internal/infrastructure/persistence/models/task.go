package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/internal/domain/task"
)

// TaskDefinitionModel is the persistence model for the task catalog
type TaskDefinitionModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_task_tenant_identifier,priority:1"`
	AuditModel
	Identifier       string   `gorm:"type:varchar(32);not null;uniqueIndex:idx_task_tenant_identifier,priority:2"`
	Type             string   `gorm:"type:varchar(16);not null"`
	Name             string   `gorm:"type:varchar(256);not null"`
	Description      string   `gorm:"type:text"`
	AssignedCommands []string `gorm:"type:jsonb;serializer:json"`
	Mandatory        bool     `gorm:"not null;default:false"`
	Predefined       bool     `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (TaskDefinitionModel) TableName() string {
	return "task_definitions"
}

// ToDomain converts the model to a task definition
func (m *TaskDefinitionModel) ToDomain() *task.Definition {
	commands := make([]customer.Action, len(m.AssignedCommands))
	for i, a := range m.AssignedCommands {
		commands[i] = customer.Action(a)
	}
	return &task.Definition{
		TenantAggregateRoot: tenantAggregateRoot(m.ID, m.TenantID),
		AuditInfo:           m.AuditModel.ToDomain(),
		Identifier:          m.Identifier,
		Type:                task.Type(m.Type),
		Name:                m.Name,
		Description:         m.Description,
		AssignedCommands:    commands,
		Mandatory:           m.Mandatory,
		Predefined:          m.Predefined,
	}
}

// TaskDefinitionModelFromDomain converts a definition to its model
func TaskDefinitionModelFromDomain(d *task.Definition) *TaskDefinitionModel {
	commands := make([]string, len(d.AssignedCommands))
	for i, a := range d.AssignedCommands {
		commands[i] = string(a)
	}
	return &TaskDefinitionModel{
		ID:               d.ID,
		TenantID:         d.TenantID,
		AuditModel:       AuditModelFromDomain(d.AuditInfo),
		Identifier:       d.Identifier,
		Type:             string(d.Type),
		Name:             d.Name,
		Description:      d.Description,
		AssignedCommands: commands,
		Mandatory:        d.Mandatory,
		Predefined:       d.Predefined,
	}
}

// TaskInstanceModel links a task definition to a customer
type TaskInstanceModel struct {
	TenantModel
	CustomerID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_task_instance_customer,priority:1"`
	DefinitionID uuid.UUID  `gorm:"type:uuid;not null;index:idx_task_instance_customer,priority:2"`
	Comment      string     `gorm:"type:text"`
	CreatedOn    time.Time  `gorm:"not null"`
	ExecutedBy   *uuid.UUID `gorm:"type:uuid"`
	ExecutedOn   *time.Time
}

// TableName returns the table name for GORM
func (TaskInstanceModel) TableName() string {
	return "task_instances"
}

// ToDomain converts the model to a task instance
func (m *TaskInstanceModel) ToDomain() task.Instance {
	return task.Instance{
		BaseEntity:   shared.BaseEntity{ID: m.ID},
		TenantID:     m.TenantID,
		CustomerID:   m.CustomerID,
		DefinitionID: m.DefinitionID,
		Comment:      m.Comment,
		CreatedOn:    m.CreatedOn,
		ExecutedBy:   m.ExecutedBy,
		ExecutedOn:   m.ExecutedOn,
	}
}

// TaskInstanceModelFromDomain converts an instance to its model
func TaskInstanceModelFromDomain(i *task.Instance) *TaskInstanceModel {
	return &TaskInstanceModel{
		TenantModel:  TenantModel{ID: i.ID, TenantID: i.TenantID},
		CustomerID:   i.CustomerID,
		DefinitionID: i.DefinitionID,
		Comment:      i.Comment,
		CreatedOn:    i.CreatedOn,
		ExecutedBy:   i.ExecutedBy,
		ExecutedOn:   i.ExecutedOn,
	}
}
