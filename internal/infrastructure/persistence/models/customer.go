package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/customer"
)

// CustomerModel is the persistence model for the customer aggregate
type CustomerModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customer_tenant_identifier,priority:1"`
	AuditModel
	Identifier       string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_customer_tenant_identifier,priority:2"`
	Type             string     `gorm:"type:varchar(16);not null"`
	GivenName        string     `gorm:"type:varchar(256);not null"`
	MiddleName       string     `gorm:"type:varchar(256)"`
	Surname          string     `gorm:"type:varchar(256);not null"`
	DateOfBirth      *time.Time `gorm:"type:date"`
	Member           bool       `gorm:"not null;default:false"`
	AssignedOffice   string     `gorm:"type:varchar(32)"`
	AssignedEmployee *uuid.UUID `gorm:"type:uuid"`
	CurrentState     string     `gorm:"type:varchar(16);not null;index"`
	ApplicationDate  *time.Time
	CustomValues     map[string]string `gorm:"type:jsonb;serializer:json"`

	Address        *CustomerAddressModel        `gorm:"-"`
	ContactDetails []CustomerContactDetailModel `gorm:"-"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// CustomerAddressModel stores the single postal address of a customer
type CustomerAddressModel struct {
	CustomerID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Street      string    `gorm:"type:varchar(256)"`
	City        string    `gorm:"type:varchar(256)"`
	Region      string    `gorm:"type:varchar(256)"`
	PostalCode  string    `gorm:"type:varchar(32)"`
	CountryCode string    `gorm:"type:varchar(2)"`
	Country     string    `gorm:"type:varchar(256)"`
}

// TableName returns the table name for GORM
func (CustomerAddressModel) TableName() string {
	return "customer_addresses"
}

// CustomerContactDetailModel stores one contact detail of a customer
type CustomerContactDetailModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Type            string    `gorm:"type:varchar(16);not null"`
	ContactGroup    string    `gorm:"type:varchar(16);not null"`
	Value           string    `gorm:"type:varchar(256);not null"`
	PreferenceLevel int       `gorm:"not null;default:0"`
	Validated       bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CustomerContactDetailModel) TableName() string {
	return "customer_contact_details"
}

// ToDomain converts the model, including loaded children, to a customer
func (m *CustomerModel) ToDomain() *customer.Customer {
	c := &customer.Customer{
		TenantAggregateRoot: tenantAggregateRoot(m.ID, m.TenantID),
		AuditInfo:           m.AuditModel.ToDomain(),
		Identifier:          m.Identifier,
		Type:                customer.Type(m.Type),
		GivenName:           m.GivenName,
		MiddleName:          m.MiddleName,
		Surname:             m.Surname,
		DateOfBirth:         m.DateOfBirth,
		Member:              m.Member,
		AssignedOffice:      m.AssignedOffice,
		AssignedEmployee:    m.AssignedEmployee,
		CurrentState:        customer.State(m.CurrentState),
		ApplicationDate:     m.ApplicationDate,
		CustomValues:        m.CustomValues,
	}
	if m.Address != nil {
		c.Address = &customer.Address{
			Street:      m.Address.Street,
			City:        m.Address.City,
			Region:      m.Address.Region,
			PostalCode:  m.Address.PostalCode,
			CountryCode: m.Address.CountryCode,
			Country:     m.Address.Country,
		}
	}
	for _, d := range m.ContactDetails {
		c.ContactDetails = append(c.ContactDetails, customer.ContactDetail{
			Type:            customer.ContactType(d.Type),
			Group:           customer.ContactGroup(d.ContactGroup),
			Value:           d.Value,
			PreferenceLevel: d.PreferenceLevel,
			Validated:       d.Validated,
		})
	}
	return c
}

// CustomerModelFromDomain converts a customer and its children to models
func CustomerModelFromDomain(c *customer.Customer) *CustomerModel {
	m := &CustomerModel{
		ID:               c.ID,
		TenantID:         c.TenantID,
		AuditModel:       AuditModelFromDomain(c.AuditInfo),
		Identifier:       c.Identifier,
		Type:             string(c.Type),
		GivenName:        c.GivenName,
		MiddleName:       c.MiddleName,
		Surname:          c.Surname,
		DateOfBirth:      c.DateOfBirth,
		Member:           c.Member,
		AssignedOffice:   c.AssignedOffice,
		AssignedEmployee: c.AssignedEmployee,
		CurrentState:     string(c.CurrentState),
		ApplicationDate:  c.ApplicationDate,
		CustomValues:     c.CustomValues,
	}
	if a := c.Address; a != nil {
		m.Address = &CustomerAddressModel{
			CustomerID:  c.ID,
			Street:      a.Street,
			City:        a.City,
			Region:      a.Region,
			PostalCode:  a.PostalCode,
			CountryCode: a.CountryCode,
			Country:     a.Country,
		}
	}
	for _, d := range c.ContactDetails {
		m.ContactDetails = append(m.ContactDetails, CustomerContactDetailModel{
			ID:              uuid.New(),
			CustomerID:      c.ID,
			Type:            string(d.Type),
			ContactGroup:    string(d.Group),
			Value:           d.Value,
			PreferenceLevel: d.PreferenceLevel,
			Validated:       d.Validated,
		})
	}
	return m
}

// CommandModel is one row of the lifecycle command audit log
type CommandModel struct {
	TenantModel
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Action     string    `gorm:"type:varchar(16);not null"`
	Comment    string    `gorm:"type:text"`
	CreatedBy  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedOn  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CommandModel) TableName() string {
	return "customer_commands"
}

// ToDomain converts the model to a command
func (m *CommandModel) ToDomain() customer.Command {
	return customer.Command{
		ID:         m.ID,
		TenantID:   m.TenantID,
		CustomerID: m.CustomerID,
		Action:     customer.Action(m.Action),
		Comment:    m.Comment,
		CreatedBy:  m.CreatedBy,
		CreatedOn:  m.CreatedOn,
	}
}

// CommandModelFromDomain converts a command to its model
func CommandModelFromDomain(c *customer.Command) *CommandModel {
	return &CommandModel{
		TenantModel: TenantModel{ID: c.ID, TenantID: c.TenantID},
		CustomerID:  c.CustomerID,
		Action:      string(c.Action),
		Comment:     c.Comment,
		CreatedBy:   c.CreatedBy,
		CreatedOn:   c.CreatedOn,
	}
}

// IdentificationCardModel is the persistence model for identification cards
type IdentificationCardModel struct {
	TenantModel
	AuditModel
	CustomerID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_card_customer_number,priority:1"`
	Number         string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_card_customer_number,priority:2"`
	Type           string    `gorm:"type:varchar(32);not null"`
	Issuer         string    `gorm:"type:varchar(256)"`
	ExpirationDate time.Time `gorm:"type:date;not null"`
}

// TableName returns the table name for GORM
func (IdentificationCardModel) TableName() string {
	return "identification_cards"
}

// ToDomain converts the model to an identification card
func (m *IdentificationCardModel) ToDomain() *customer.IdentificationCard {
	card := &customer.IdentificationCard{
		AuditInfo:      m.AuditModel.ToDomain(),
		TenantID:       m.TenantID,
		CustomerID:     m.CustomerID,
		Number:         m.Number,
		Type:           m.Type,
		Issuer:         m.Issuer,
		ExpirationDate: m.ExpirationDate,
	}
	card.ID = m.ID
	return card
}

// IdentificationCardModelFromDomain converts a card to its model
func IdentificationCardModelFromDomain(c *customer.IdentificationCard) *IdentificationCardModel {
	return &IdentificationCardModel{
		TenantModel:    TenantModel{ID: c.ID, TenantID: c.TenantID},
		AuditModel:     AuditModelFromDomain(c.AuditInfo),
		CustomerID:     c.CustomerID,
		Number:         c.Number,
		Type:           c.Type,
		Issuer:         c.Issuer,
		ExpirationDate: c.ExpirationDate,
	}
}
