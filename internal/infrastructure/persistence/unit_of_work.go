package persistence

import (
	"context"

	"github.com/microfinance/backend/internal/application/uow"
	"github.com/microfinance/backend/internal/infrastructure/event"
	"gorm.io/gorm"
)

// GormUnitOfWork implements uow.UnitOfWork using GORM transactions.
// Every repository handed to fn, including the outbox, shares the transaction.
type GormUnitOfWork struct {
	db        *gorm.DB
	publisher *event.OutboxPublisher
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB, publisher *event.OutboxPublisher) *GormUnitOfWork {
	return &GormUnitOfWork{db: db, publisher: publisher}
}

// Execute runs fn within a database transaction. If fn returns an error the
// transaction is rolled back, otherwise it is committed.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx, u.publisher))
	})
}

// NewRepositories binds every repository to db
func NewRepositories(db *gorm.DB, publisher *event.OutboxPublisher) uow.Repositories {
	return uow.Repositories{
		Customers:           NewGormCustomerRepository(db),
		Commands:            NewGormCommandRepository(db),
		IdentificationCards: NewGormIdentificationCardRepository(db),
		TaskDefinitions:     NewGormTaskDefinitionRepository(db),
		TaskInstances:       NewGormTaskInstanceRepository(db),
		Documents:           NewGormDocumentRepository(db),
		Pages:               NewGormPageRepository(db),
		Outbox:              publisher.Bind(db),
	}
}

var _ uow.UnitOfWork = (*GormUnitOfWork)(nil)
