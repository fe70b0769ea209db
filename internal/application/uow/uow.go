// Package uow defines the transaction boundary used by application services.
package uow

import (
	"context"

	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/document"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/internal/domain/task"
)

// Repositories is the set of repositories bound to one transaction.
// Events published through Outbox are stored in the same transaction and
// delivered to consumers after commit.
type Repositories struct {
	Customers           customer.CustomerRepository
	Commands            customer.CommandRepository
	IdentificationCards customer.IdentificationCardRepository
	TaskDefinitions     task.DefinitionRepository
	TaskInstances       task.InstanceRepository
	Documents           document.DocumentRepository
	Pages               document.PageRepository
	Outbox              shared.EventPublisher
}

// UnitOfWork runs fn inside a single transaction. Returning an error from fn
// rolls back every write made through the repositories, outbox included.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// PublishEvents stores the aggregate's pending events in the outbox and
// clears them
func PublishEvents(ctx context.Context, repos Repositories, agg shared.AggregateRoot) error {
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}
	if err := repos.Outbox.Publish(ctx, events...); err != nil {
		return err
	}
	agg.ClearDomainEvents()
	return nil
}
