package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/document"
	"github.com/microfinance/backend/internal/domain/task"
	"github.com/microfinance/backend/internal/infrastructure/persistence/models"
	"github.com/microfinance/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t, models.All()...)
}

func newCustomer(t *testing.T, identifier, given, surname string) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer(testutil.TestTenantID(), identifier, customer.Profile{
		Type:      customer.TypePerson,
		GivenName: given,
		Surname:   surname,
	}, testutil.TestUserID())
	require.NoError(t, err)
	return c
}

func newDefinition(t *testing.T, identifier string, spec task.DefinitionSpec) *task.Definition {
	t.Helper()
	d, err := task.NewDefinition(testutil.TestTenantID(), identifier, spec, testutil.TestUserID())
	require.NoError(t, err)
	return d
}

func newDocument(t *testing.T, customerID uuid.UUID, identifier string) *document.Document {
	t.Helper()
	d, err := document.NewDocument(testutil.TestTenantID(), customerID, identifier, "loan file", testutil.TestUserID())
	require.NoError(t, err)
	return d
}

func newCard(t *testing.T, c *customer.Customer, number string) *customer.IdentificationCard {
	t.Helper()
	card, err := customer.NewIdentificationCard(c, number, customer.IdentificationCardDetails{
		Type:           "PASSPORT",
		Issuer:         "Republic",
		ExpirationDate: time.Now().AddDate(5, 0, 0),
	}, testutil.TestUserID())
	require.NoError(t, err)
	return card
}
