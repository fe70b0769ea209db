package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
)

// ListFilter narrows customer listings
type ListFilter struct {
	shared.Filter
	// IncludeClosed keeps CLOSED customers in the result
	IncludeClosed bool
}

// CustomerRepository persists the customer aggregate, including its
// address and contact details
type CustomerRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (*Customer, error)
	ExistsByIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (bool, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]Customer, int64, error)
	// Save inserts or updates the customer and replaces its address and
	// contact details wholesale
	Save(ctx context.Context, c *Customer) error
}

// CommandRepository is the append-only audit log of lifecycle commands
type CommandRepository interface {
	Append(ctx context.Context, cmd *Command) error
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Command, error)
}

// IdentificationCardRepository persists identification cards
type IdentificationCardRepository interface {
	Save(ctx context.Context, card *IdentificationCard) error
	FindByNumber(ctx context.Context, tenantID, customerID uuid.UUID, number string) (*IdentificationCard, error)
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]IdentificationCard, error)
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
	Delete(ctx context.Context, tenantID, customerID uuid.UUID, number string) error
}
