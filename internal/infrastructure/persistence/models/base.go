package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
)

// TenantModel provides the key and tenant columns of tenant scoped tables
type TenantModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// AuditModel maps shared.AuditInfo
type AuditModel struct {
	CreatedBy      uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedOn      time.Time  `gorm:"not null"`
	LastModifiedBy *uuid.UUID `gorm:"type:uuid"`
	LastModifiedOn *time.Time
}

// ToDomain converts the audit columns to shared.AuditInfo
func (m AuditModel) ToDomain() shared.AuditInfo {
	return shared.AuditInfo{
		CreatedBy:      m.CreatedBy,
		CreatedOn:      m.CreatedOn,
		LastModifiedBy: m.LastModifiedBy,
		LastModifiedOn: m.LastModifiedOn,
	}
}

// AuditModelFromDomain converts shared.AuditInfo to audit columns
func AuditModelFromDomain(a shared.AuditInfo) AuditModel {
	return AuditModel{
		CreatedBy:      a.CreatedBy,
		CreatedOn:      a.CreatedOn,
		LastModifiedBy: a.LastModifiedBy,
		LastModifiedOn: a.LastModifiedOn,
	}
}

// tenantAggregateRoot rebuilds an aggregate root header from stored ids
func tenantAggregateRoot(id, tenantID uuid.UUID) shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: id}},
		TenantID:          tenantID,
	}
}

// All lists every model, in creation order, for AutoMigrate
func All() []any {
	return []any{
		&CustomerModel{},
		&CustomerAddressModel{},
		&CustomerContactDetailModel{},
		&CommandModel{},
		&IdentificationCardModel{},
		&TaskDefinitionModel{},
		&TaskInstanceModel{},
		&DocumentModel{},
		&DocumentPageModel{},
		&PageImageModel{},
		&OutboxEntryModel{},
	}
}
