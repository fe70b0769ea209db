package task

import (
	"context"

	"github.com/google/uuid"
)

// DefinitionRepository persists the task catalog
type DefinitionRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Definition, error)
	FindByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (*Definition, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Definition, error)
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]Definition, error)
	FindPredefined(ctx context.Context, tenantID uuid.UUID) ([]Definition, error)
	ExistsByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (bool, error)
	Save(ctx context.Context, d *Definition) error
}

// InstanceRepository persists task instances
type InstanceRepository interface {
	Save(ctx context.Context, i *Instance) error
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, includeExecuted bool) ([]Instance, error)
	FindByCustomerAndDefinition(ctx context.Context, tenantID, customerID, definitionID uuid.UUID) ([]Instance, error)
	// DeleteOpen removes the open instances of a definition for a customer
	// and returns how many were removed
	DeleteOpen(ctx context.Context, tenantID, customerID, definitionID uuid.UUID) (int64, error)
}
