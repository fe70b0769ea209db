package customer

import (
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
)

// Type distinguishes natural persons from businesses
type Type string

const (
	TypePerson   Type = "PERSON"
	TypeBusiness Type = "BUSINESS"
)

// ContactType is the channel of a contact detail
type ContactType string

const (
	ContactTypeEmail  ContactType = "EMAIL"
	ContactTypePhone  ContactType = "PHONE"
	ContactTypeMobile ContactType = "MOBILE"
)

// ContactGroup tells business and private contact details apart
type ContactGroup string

const (
	ContactGroupBusiness ContactGroup = "BUSINESS"
	ContactGroupPrivate  ContactGroup = "PRIVATE"
)

// Address is the customer's postal address. It is replaced as a whole.
type Address struct {
	Street      string
	City        string
	Region      string
	PostalCode  string
	CountryCode string
	Country     string
}

// ContactDetail is one way to reach the customer
type ContactDetail struct {
	Type            ContactType
	Group           ContactGroup
	Value           string
	PreferenceLevel int
	Validated       bool
}

// Customer is the aggregate root of the customer lifecycle
type Customer struct {
	shared.TenantAggregateRoot
	shared.AuditInfo
	Identifier       string
	Type             Type
	GivenName        string
	MiddleName       string
	Surname          string
	DateOfBirth      *time.Time
	Member           bool
	AssignedOffice   string
	AssignedEmployee *uuid.UUID
	CurrentState     State
	ApplicationDate  *time.Time
	Address          *Address
	ContactDetails   []ContactDetail
	CustomValues     map[string]string
}

// Profile holds the descriptive attributes set on create and update
type Profile struct {
	Type             Type
	GivenName        string
	MiddleName       string
	Surname          string
	DateOfBirth      *time.Time
	Member           bool
	AssignedOffice   string
	AssignedEmployee *uuid.UUID
	Address          *Address
	ContactDetails   []ContactDetail
	CustomValues     map[string]string
}

// NewCustomer creates a PENDING customer
func NewCustomer(tenantID uuid.UUID, identifier string, profile Profile, actor uuid.UUID) (*Customer, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "customer identifier cannot be empty")
	}
	if len(identifier) > 32 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "customer identifier cannot exceed 32 characters")
	}
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	c := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AuditInfo:           shared.NewAuditInfo(actor),
		Identifier:          identifier,
		CurrentState:        StatePending,
	}
	c.applyProfile(profile)

	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// Update replaces the descriptive attributes, including address and
// contact details. State and application date are untouched.
func (c *Customer) Update(profile Profile, actor uuid.UUID) error {
	if err := validateProfile(profile); err != nil {
		return err
	}
	c.applyProfile(profile)
	c.Touch(actor)

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

func (c *Customer) applyProfile(p Profile) {
	c.Type = p.Type
	if c.Type == "" {
		c.Type = TypePerson
	}
	c.GivenName = strings.TrimSpace(p.GivenName)
	c.MiddleName = strings.TrimSpace(p.MiddleName)
	c.Surname = strings.TrimSpace(p.Surname)
	c.DateOfBirth = p.DateOfBirth
	c.Member = p.Member
	c.AssignedOffice = p.AssignedOffice
	c.AssignedEmployee = p.AssignedEmployee
	c.Address = p.Address
	c.ContactDetails = append([]ContactDetail(nil), p.ContactDetails...)
	c.CustomValues = maps.Clone(p.CustomValues)
}

func validateProfile(p Profile) error {
	if p.Type != "" && p.Type != TypePerson && p.Type != TypeBusiness {
		return shared.NewDomainError(shared.CodeInvalidInput, "customer type must be PERSON or BUSINESS")
	}
	if strings.TrimSpace(p.GivenName) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "given name cannot be empty")
	}
	if strings.TrimSpace(p.Surname) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "surname cannot be empty")
	}
	if p.DateOfBirth != nil && p.DateOfBirth.After(time.Now()) {
		return shared.NewDomainError(shared.CodeInvalidInput, "date of birth cannot be in the future")
	}
	return nil
}

// CheckTransition verifies the customer is in a state the command accepts
func (c *Customer) CheckTransition(action Action) (Transition, error) {
	t, ok := TransitionFor(action)
	if !ok {
		return Transition{}, shared.NewDomainError(CodeUnsupportedAction, "unsupported action: "+string(action))
	}
	if !t.Allows(c.CurrentState) {
		return Transition{}, shared.NewDomainError(CodeIllegalTransition,
			"cannot "+strings.ToLower(string(action))+" customer "+c.Identifier+" in state "+string(c.CurrentState))
	}
	return t, nil
}

// IsClosed reports whether the customer is CLOSED
func (c *Customer) IsClosed() bool {
	return c.CurrentState == StateClosed
}

// FullName joins the name parts
func (c *Customer) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.GivenName, c.MiddleName, c.Surname} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
