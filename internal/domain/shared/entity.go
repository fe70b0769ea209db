package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is implemented by everything with a stable identity
type Entity interface {
	GetID() uuid.UUID
}

// BaseEntity carries the surrogate key shared by all persisted entities
type BaseEntity struct {
	ID uuid.UUID
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// NewBaseEntity creates a base entity with a fresh ID
func NewBaseEntity() BaseEntity {
	return BaseEntity{ID: uuid.New()}
}

// AuditInfo records who created a record and who touched it last.
// LastModifiedBy/On stay nil until the first modification.
type AuditInfo struct {
	CreatedBy      uuid.UUID
	CreatedOn      time.Time
	LastModifiedBy *uuid.UUID
	LastModifiedOn *time.Time
}

// NewAuditInfo stamps creation by actor at the current time
func NewAuditInfo(actor uuid.UUID) AuditInfo {
	return AuditInfo{
		CreatedBy: actor,
		CreatedOn: time.Now(),
	}
}

// Touch stamps lastModifiedBy/On
func (a *AuditInfo) Touch(actor uuid.UUID) {
	now := time.Now()
	a.LastModifiedBy = &actor
	a.LastModifiedOn = &now
}
