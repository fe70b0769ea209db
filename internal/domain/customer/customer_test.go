package customer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() Profile {
	return Profile{
		Type:      TypePerson,
		GivenName: "Amina",
		Surname:   "Okafor",
		Address:   &Address{Street: "12 Market Road", City: "Lagos", CountryCode: "NG", Country: "Nigeria"},
		ContactDetails: []ContactDetail{
			{Type: ContactTypeMobile, Group: ContactGroupPrivate, Value: "+2348000000000", PreferenceLevel: 1},
		},
	}
}

func newTestCustomer(t *testing.T) *Customer {
	t.Helper()
	c, err := NewCustomer(uuid.New(), "C1", testProfile(), uuid.New())
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func TestNewCustomer(t *testing.T) {
	tenantID := uuid.New()
	actor := uuid.New()

	t.Run("creates pending customer", func(t *testing.T) {
		c, err := NewCustomer(tenantID, " C1 ", testProfile(), actor)

		require.NoError(t, err)
		assert.Equal(t, "C1", c.Identifier)
		assert.Equal(t, StatePending, c.CurrentState)
		assert.Equal(t, tenantID, c.TenantID)
		assert.Equal(t, actor, c.CreatedBy)
		assert.Nil(t, c.ApplicationDate)
		assert.Nil(t, c.LastModifiedBy)
		assert.Len(t, c.ContactDetails, 1)
		require.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeCustomerCreated, c.GetDomainEvents()[0].EventType())
	})

	t.Run("defaults type to person", func(t *testing.T) {
		p := testProfile()
		p.Type = ""
		c, err := NewCustomer(tenantID, "C2", p, actor)

		require.NoError(t, err)
		assert.Equal(t, TypePerson, c.Type)
	})

	tests := []struct {
		name       string
		identifier string
		mutate     func(*Profile)
		wantMsg    string
	}{
		{"empty identifier", "", func(*Profile) {}, "identifier cannot be empty"},
		{"identifier too long", "C1234567890123456789012345678901234", func(*Profile) {}, "cannot exceed 32"},
		{"empty given name", "C3", func(p *Profile) { p.GivenName = " " }, "given name"},
		{"empty surname", "C3", func(p *Profile) { p.Surname = "" }, "surname"},
		{"invalid type", "C3", func(p *Profile) { p.Type = "ROBOT" }, "PERSON or BUSINESS"},
		{"birth in future", "C3", func(p *Profile) {
			future := time.Now().AddDate(1, 0, 0)
			p.DateOfBirth = &future
		}, "future"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile()
			tt.mutate(&p)
			c, err := NewCustomer(tenantID, tt.identifier, p, actor)

			assert.Nil(t, c)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, shared.CodeInvalidInput, domainErr.Code)
			assert.Contains(t, domainErr.Message, tt.wantMsg)
		})
	}
}

func TestCustomer_Update(t *testing.T) {
	c := newTestCustomer(t)
	c.CurrentState = StateActive
	editor := uuid.New()

	p := testProfile()
	p.GivenName = "Ngozi"
	p.Address = nil
	p.ContactDetails = nil
	require.NoError(t, c.Update(p, editor))

	assert.Equal(t, "Ngozi", c.GivenName)
	assert.Nil(t, c.Address)
	assert.Empty(t, c.ContactDetails)
	assert.Equal(t, StateActive, c.CurrentState)
	require.NotNil(t, c.LastModifiedBy)
	assert.Equal(t, editor, *c.LastModifiedBy)
	require.Len(t, c.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeCustomerUpdated, c.GetDomainEvents()[0].EventType())
}

func TestCustomer_FullName(t *testing.T) {
	c := newTestCustomer(t)
	assert.Equal(t, "Amina Okafor", c.FullName())
	c.MiddleName = "Chi"
	assert.Equal(t, "Amina Chi Okafor", c.FullName())
}

func TestNewIdentificationCard(t *testing.T) {
	c := newTestCustomer(t)
	actor := uuid.New()
	expires := time.Now().AddDate(2, 0, 0)

	card, err := NewIdentificationCard(c, "P123", IdentificationCardDetails{Type: "PASSPORT", Issuer: "NG", ExpirationDate: expires}, actor)
	require.NoError(t, err)
	assert.Equal(t, c.ID, card.CustomerID)
	assert.Equal(t, c.TenantID, card.TenantID)
	assert.False(t, card.IsExpired(time.Now()))

	_, err = NewIdentificationCard(c, " ", IdentificationCardDetails{Type: "PASSPORT", ExpirationDate: expires}, actor)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewIdentificationCard(c, "P124", IdentificationCardDetails{Type: "PASSPORT"}, actor)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	require.NoError(t, card.Change(IdentificationCardDetails{Type: "NATIONAL_ID", ExpirationDate: expires}, actor))
	assert.Equal(t, "NATIONAL_ID", card.Type)
	assert.NotNil(t, card.LastModifiedOn)
}
