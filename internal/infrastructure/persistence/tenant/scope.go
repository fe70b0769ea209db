// Package tenant provides tenant scoping for GORM queries.
//
// Every tenant owned table carries a tenant_id column; repositories apply
// Scope to each query so one tenant never reads another tenant's rows.
//
//	db.Scopes(tenant.Scope(tenantID)).Find(&customers)
package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Column is the tenant column of every tenant owned table
const Column = "tenant_id"

// Scope filters a query to rows of tenantID. A nil tenant matches nothing.
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where(Column+" = ?", tenantID)
	}
}
