package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/microfinance/backend/internal/application/uow"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/internal/infrastructure/event"
	"github.com/microfinance/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUnitOfWork(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	unit := NewGormUnitOfWork(db, event.NewOutboxPublisher(event.NewRegisteredSerializer()))
	outbox := event.NewGormOutboxRepository(db)
	customers := NewGormCustomerRepository(db)

	t.Run("commit stores the aggregate with its events", func(t *testing.T) {
		c := newCustomer(t, "UOW-1", "Ada", "Lovelace")

		err := unit.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
			if err := repos.Customers.Save(ctx, c); err != nil {
				return err
			}
			return uow.PublishEvents(ctx, repos, c)
		})
		require.NoError(t, err)
		assert.Empty(t, c.GetDomainEvents())

		_, err = customers.FindByIdentifier(ctx, testutil.TestTenantID(), "UOW-1")
		require.NoError(t, err)

		pending, err := outbox.FindPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, customer.EventTypeCustomerCreated, pending[0].EventType)
		assert.Equal(t, c.ID, pending[0].AggregateID)
	})

	t.Run("error rolls back the aggregate and its events", func(t *testing.T) {
		c := newCustomer(t, "UOW-2", "Grace", "Hopper")
		failure := errors.New("gate closed")

		err := unit.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
			if err := repos.Customers.Save(ctx, c); err != nil {
				return err
			}
			if err := uow.PublishEvents(ctx, repos, c); err != nil {
				return err
			}
			return failure
		})
		require.ErrorIs(t, err, failure)

		_, err = customers.FindByIdentifier(ctx, testutil.TestTenantID(), "UOW-2")
		assert.True(t, shared.IsNotFound(err))

		counts, err := outbox.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[shared.OutboxStatusPending], "only the committed event remains")
	})
}
