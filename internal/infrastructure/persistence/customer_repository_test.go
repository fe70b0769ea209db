package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCustomerRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerRepository(newTestDB(t))
	tenantID := testutil.TestTenantID()

	c := newCustomer(t, "C-001", "Ada", "Lovelace")
	c.Address = &customer.Address{Street: "1 Main St", City: "London", CountryCode: "GB", Country: "United Kingdom"}
	c.ContactDetails = []customer.ContactDetail{
		{Type: customer.ContactTypeMobile, Group: customer.ContactGroupPrivate, Value: "+44 700", PreferenceLevel: 2},
		{Type: customer.ContactTypeEmail, Group: customer.ContactGroupBusiness, Value: "ada@example.com", PreferenceLevel: 1},
	}
	c.CustomValues = map[string]string{"branch": "north"}
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.FindByIdentifier(ctx, tenantID, "C-001")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, customer.StatePending, got.CurrentState)
	assert.Equal(t, "Ada", got.GivenName)
	require.NotNil(t, got.Address)
	assert.Equal(t, "London", got.Address.City)
	require.Len(t, got.ContactDetails, 2)
	assert.Equal(t, "ada@example.com", got.ContactDetails[0].Value, "contacts are ordered by preference")
	assert.Equal(t, "north", got.CustomValues["branch"])

	byID, err := repo.FindByID(ctx, tenantID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "C-001", byID.Identifier)

	exists, err := repo.ExistsByIdentifier(ctx, tenantID, "C-001")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormCustomerRepository_SaveReplacesChildren(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerRepository(newTestDB(t))

	c := newCustomer(t, "C-002", "Grace", "Hopper")
	c.Address = &customer.Address{City: "Arlington"}
	c.ContactDetails = []customer.ContactDetail{{Type: customer.ContactTypePhone, Group: customer.ContactGroupPrivate, Value: "555"}}
	require.NoError(t, repo.Save(ctx, c))

	c.Address = nil
	c.ContactDetails = []customer.ContactDetail{{Type: customer.ContactTypeEmail, Group: customer.ContactGroupBusiness, Value: "grace@navy.mil"}}
	c.CurrentState = customer.StateActive
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.FindByID(ctx, testutil.TestTenantID(), c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Address)
	require.Len(t, got.ContactDetails, 1)
	assert.Equal(t, "grace@navy.mil", got.ContactDetails[0].Value)
	assert.Equal(t, customer.StateActive, got.CurrentState)
}

func TestGormCustomerRepository_Errors(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerRepository(newTestDB(t))

	require.NoError(t, repo.Save(ctx, newCustomer(t, "C-003", "Alan", "Turing")))

	t.Run("duplicate identifier", func(t *testing.T) {
		err := repo.Save(ctx, newCustomer(t, "C-003", "Other", "Person"))
		assert.True(t, shared.HasCode(err, shared.CodeAlreadyExists), "got %v", err)
	})

	t.Run("missing customer", func(t *testing.T) {
		_, err := repo.FindByIdentifier(ctx, testutil.TestTenantID(), "nope")
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("other tenant cannot see the customer", func(t *testing.T) {
		_, err := repo.FindByIdentifier(ctx, uuid.New(), "C-003")
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestGormCustomerRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerRepository(newTestDB(t))
	tenantID := testutil.TestTenantID()

	for _, c := range []*customer.Customer{
		newCustomer(t, "A-1", "Ada", "Lovelace"),
		newCustomer(t, "A-2", "Grace", "Hopper"),
		newCustomer(t, "A-3", "Alan", "Turing"),
	} {
		require.NoError(t, repo.Save(ctx, c))
	}
	closed := newCustomer(t, "A-4", "Edsger", "Dijkstra")
	closed.CurrentState = customer.StateClosed
	require.NoError(t, repo.Save(ctx, closed))

	list := func(mutate func(f *customer.ListFilter)) ([]customer.Customer, int64) {
		f := customer.ListFilter{Filter: shared.DefaultFilter()}
		mutate(&f)
		items, total, err := repo.List(ctx, tenantID, f)
		require.NoError(t, err)
		return items, total
	}

	t.Run("closed customers are hidden by default", func(t *testing.T) {
		_, total := list(func(*customer.ListFilter) {})
		assert.Equal(t, int64(3), total)
	})

	t.Run("closed customers can be included", func(t *testing.T) {
		_, total := list(func(f *customer.ListFilter) { f.IncludeClosed = true })
		assert.Equal(t, int64(4), total)
	})

	t.Run("term matches names case-insensitively", func(t *testing.T) {
		items, total := list(func(f *customer.ListFilter) { f.Search = "HOPP" })
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "A-2", items[0].Identifier)
	})

	t.Run("sorting and paging", func(t *testing.T) {
		items, total := list(func(f *customer.ListFilter) {
			f.OrderBy = "surname"
			f.OrderDir = "asc"
			f.PageSize = 2
			f.Page = 2
		})
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 1)
		assert.Equal(t, "Turing", items[0].Surname)
	})

	t.Run("unknown sort column falls back", func(t *testing.T) {
		items, _ := list(func(f *customer.ListFilter) { f.OrderBy = "surname; DROP TABLE customers" })
		assert.Len(t, items, 3)
	})
}

func TestGormCommandRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	customers := NewGormCustomerRepository(db)
	commands := NewGormCommandRepository(db)

	c := newCustomer(t, "C-010", "Ada", "Lovelace")
	require.NoError(t, customers.Save(ctx, c))

	activate, err := c.Apply(customer.LifecycleCommand{Action: customer.ActionActivate, Comment: "approved", Actor: testutil.TestUserID()})
	require.NoError(t, err)
	require.NoError(t, commands.Append(ctx, activate))

	lock, err := c.Apply(customer.LifecycleCommand{Action: customer.ActionLock, Actor: testutil.TestUserID()})
	require.NoError(t, err)
	lock.CreatedOn = activate.CreatedOn.Add(time.Millisecond)
	require.NoError(t, commands.Append(ctx, lock))

	history, err := commands.FindByCustomer(ctx, testutil.TestTenantID(), c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, customer.ActionActivate, history[0].Action)
	assert.Equal(t, "approved", history[0].Comment)
	assert.Equal(t, customer.ActionLock, history[1].Action)
}

func TestGormIdentificationCardRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	cards := NewGormIdentificationCardRepository(db)
	tenantID := testutil.TestTenantID()

	c := newCustomer(t, "C-020", "Ada", "Lovelace")
	require.NoError(t, NewGormCustomerRepository(db).Save(ctx, c))

	require.NoError(t, cards.Save(ctx, newCard(t, c, "P-2")))
	require.NoError(t, cards.Save(ctx, newCard(t, c, "P-1")))

	t.Run("duplicate number", func(t *testing.T) {
		err := cards.Save(ctx, newCard(t, c, "P-1"))
		assert.True(t, shared.HasCode(err, shared.CodeAlreadyExists), "got %v", err)
	})

	card, err := cards.FindByNumber(ctx, tenantID, c.ID, "P-1")
	require.NoError(t, err)
	assert.Equal(t, "PASSPORT", card.Type)

	all, err := cards.FindByCustomer(ctx, tenantID, c.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "P-1", all[0].Number)

	count, err := cards.CountByCustomer(ctx, tenantID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, cards.Delete(ctx, tenantID, c.ID, "P-1"))
	_, err = cards.FindByNumber(ctx, tenantID, c.ID, "P-1")
	assert.True(t, shared.IsNotFound(err))
	assert.NoError(t, cards.Delete(ctx, tenantID, c.ID, "P-1"), "deleting twice is a no-op")
}
