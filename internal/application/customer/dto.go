package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/shared"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// AddressDTO is the postal address in requests and responses
type AddressDTO struct {
	Street      string `json:"street" binding:"max=256"`
	City        string `json:"city" binding:"max=256"`
	Region      string `json:"region" binding:"max=256"`
	PostalCode  string `json:"postal_code" binding:"max=32"`
	CountryCode string `json:"country_code" binding:"omitempty,len=2"`
	Country     string `json:"country" binding:"max=256"`
}

// ContactDetailDTO is one contact detail in requests and responses
type ContactDetailDTO struct {
	Type            string `json:"type" binding:"required,oneof=EMAIL PHONE MOBILE"`
	Group           string `json:"group" binding:"required,oneof=BUSINESS PRIVATE"`
	Value           string `json:"value" binding:"required,max=256"`
	PreferenceLevel int    `json:"preference_level" binding:"min=0"`
	Validated       bool   `json:"validated"`
}

// ProfileFields are the descriptive attributes shared by create and update
type ProfileFields struct {
	Type             string             `json:"type" binding:"omitempty,oneof=PERSON BUSINESS"`
	GivenName        string             `json:"given_name" binding:"required,max=256"`
	MiddleName       string             `json:"middle_name" binding:"max=256"`
	Surname          string             `json:"surname" binding:"required,max=256"`
	DateOfBirth      *time.Time         `json:"date_of_birth"`
	Member           bool               `json:"member"`
	AssignedOffice   string             `json:"assigned_office" binding:"max=32"`
	AssignedEmployee *uuid.UUID         `json:"assigned_employee"`
	Address          *AddressDTO        `json:"address"`
	ContactDetails   []ContactDetailDTO `json:"contact_details" binding:"dive"`
	CustomValues     map[string]string  `json:"custom_values"`
}

// CreateCustomerRequest creates a customer in PENDING state
type CreateCustomerRequest struct {
	Identifier string `json:"identifier" binding:"required,min=1,max=32"`
	ProfileFields
}

// UpdateCustomerRequest replaces the descriptive attributes of a customer
type UpdateCustomerRequest struct {
	ProfileFields
}

// CustomerListFilter narrows customer listings
type CustomerListFilter struct {
	Term          string `form:"term"`
	IncludeClosed bool   `form:"includeClosed"`
	PageIndex     int    `form:"pageIndex" binding:"min=0"`
	Size          int    `form:"size" binding:"omitempty,min=1,max=100"`
	SortColumn    string `form:"sortColumn" binding:"omitempty,oneof=identifier given_name surname current_state created_on"`
	SortDirection string `form:"sortDirection" binding:"omitempty,oneof=ASC DESC asc desc"`
}

// CustomerResponse is a customer in API responses
type CustomerResponse struct {
	ID               uuid.UUID          `json:"id"`
	Identifier       string             `json:"identifier"`
	Type             string             `json:"type"`
	GivenName        string             `json:"given_name"`
	MiddleName       string             `json:"middle_name,omitempty"`
	Surname          string             `json:"surname"`
	DateOfBirth      *time.Time         `json:"date_of_birth,omitempty"`
	Member           bool               `json:"member"`
	AssignedOffice   string             `json:"assigned_office,omitempty"`
	AssignedEmployee *uuid.UUID         `json:"assigned_employee,omitempty"`
	CurrentState     string             `json:"current_state"`
	ApplicationDate  *time.Time         `json:"application_date,omitempty"`
	Address          *AddressDTO        `json:"address,omitempty"`
	ContactDetails   []ContactDetailDTO `json:"contact_details"`
	CustomValues     map[string]string  `json:"custom_values,omitempty"`
	CreatedBy        uuid.UUID          `json:"created_by"`
	CreatedOn        time.Time          `json:"created_on"`
	LastModifiedBy   *uuid.UUID         `json:"last_modified_by,omitempty"`
	LastModifiedOn   *time.Time         `json:"last_modified_on,omitempty"`
}

// =============================================================================
// Lifecycle DTOs
// =============================================================================

// ExecuteCommandRequest asks for a lifecycle transition
type ExecuteCommandRequest struct {
	Action  string `json:"action" binding:"required,lifecycle_action"`
	Comment string `json:"comment" binding:"max=2048"`
}

// CommandResponse is one entry of the lifecycle audit log
type CommandResponse struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	Comment   string    `json:"comment,omitempty"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedOn time.Time `json:"created_on"`
}

// CommandResult reports the outcome of an accepted lifecycle command
type CommandResult struct {
	Identifier    string `json:"identifier"`
	Action        string `json:"action"`
	FromState     string `json:"from_state"`
	CurrentState  string `json:"current_state"`
	AttachedTasks int    `json:"attached_tasks"`
}

// =============================================================================
// Identification card DTOs
// =============================================================================

// CreateIdentificationCardRequest adds a card to a customer
type CreateIdentificationCardRequest struct {
	Number string `json:"number" binding:"required,max=32"`
	UpdateIdentificationCardRequest
}

// UpdateIdentificationCardRequest replaces the card details
type UpdateIdentificationCardRequest struct {
	Type           string    `json:"type" binding:"required,max=128"`
	Issuer         string    `json:"issuer" binding:"max=256"`
	ExpirationDate time.Time `json:"expiration_date" binding:"required"`
}

// IdentificationCardResponse is a card in API responses
type IdentificationCardResponse struct {
	Number         string     `json:"number"`
	Type           string     `json:"type"`
	Issuer         string     `json:"issuer,omitempty"`
	ExpirationDate time.Time  `json:"expiration_date"`
	Expired        bool       `json:"expired"`
	CreatedBy      uuid.UUID  `json:"created_by"`
	CreatedOn      time.Time  `json:"created_on"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by,omitempty"`
	LastModifiedOn *time.Time `json:"last_modified_on,omitempty"`
}

// =============================================================================
// Mapping
// =============================================================================

func (p ProfileFields) profile() customer.Profile {
	out := customer.Profile{
		Type:             customer.Type(p.Type),
		GivenName:        p.GivenName,
		MiddleName:       p.MiddleName,
		Surname:          p.Surname,
		DateOfBirth:      p.DateOfBirth,
		Member:           p.Member,
		AssignedOffice:   p.AssignedOffice,
		AssignedEmployee: p.AssignedEmployee,
		CustomValues:     p.CustomValues,
	}
	if p.Address != nil {
		out.Address = &customer.Address{
			Street:      p.Address.Street,
			City:        p.Address.City,
			Region:      p.Address.Region,
			PostalCode:  p.Address.PostalCode,
			CountryCode: p.Address.CountryCode,
			Country:     p.Address.Country,
		}
	}
	for _, cd := range p.ContactDetails {
		out.ContactDetails = append(out.ContactDetails, customer.ContactDetail{
			Type:            customer.ContactType(cd.Type),
			Group:           customer.ContactGroup(cd.Group),
			Value:           cd.Value,
			PreferenceLevel: cd.PreferenceLevel,
			Validated:       cd.Validated,
		})
	}
	return out
}

func (f CustomerListFilter) toDomain() customer.ListFilter {
	filter := shared.DefaultFilter()
	filter.Page = f.PageIndex + 1
	if f.Size > 0 {
		filter.PageSize = f.Size
	}
	if f.SortColumn != "" {
		filter.OrderBy = f.SortColumn
	}
	if f.SortDirection != "" {
		filter.OrderDir = f.SortDirection
	}
	filter.Search = f.Term
	return customer.ListFilter{Filter: filter, IncludeClosed: f.IncludeClosed}
}

// ToCustomerResponse converts a customer to its response DTO
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:               c.ID,
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
		ContactDetails:   make([]ContactDetailDTO, 0, len(c.ContactDetails)),
		CustomValues:     c.CustomValues,
		CreatedBy:        c.CreatedBy,
		CreatedOn:        c.CreatedOn,
		LastModifiedBy:   c.LastModifiedBy,
		LastModifiedOn:   c.LastModifiedOn,
	}
	if c.Address != nil {
		resp.Address = &AddressDTO{
			Street:      c.Address.Street,
			City:        c.Address.City,
			Region:      c.Address.Region,
			PostalCode:  c.Address.PostalCode,
			CountryCode: c.Address.CountryCode,
			Country:     c.Address.Country,
		}
	}
	for _, cd := range c.ContactDetails {
		resp.ContactDetails = append(resp.ContactDetails, ContactDetailDTO{
			Type:            string(cd.Type),
			Group:           string(cd.Group),
			Value:           cd.Value,
			PreferenceLevel: cd.PreferenceLevel,
			Validated:       cd.Validated,
		})
	}
	return resp
}

// ToCommandResponse converts an audit record to its response DTO
func ToCommandResponse(cmd *customer.Command) CommandResponse {
	return CommandResponse{
		ID:        cmd.ID,
		Action:    string(cmd.Action),
		Comment:   cmd.Comment,
		CreatedBy: cmd.CreatedBy,
		CreatedOn: cmd.CreatedOn,
	}
}

// ToIdentificationCardResponse converts a card to its response DTO
func ToIdentificationCardResponse(card *customer.IdentificationCard) IdentificationCardResponse {
	return IdentificationCardResponse{
		Number:         card.Number,
		Type:           card.Type,
		Issuer:         card.Issuer,
		ExpirationDate: card.ExpirationDate,
		Expired:        card.IsExpired(time.Now()),
		CreatedBy:      card.CreatedBy,
		CreatedOn:      card.CreatedOn,
		LastModifiedBy: card.LastModifiedBy,
		LastModifiedOn: card.LastModifiedOn,
	}
}

func (r UpdateIdentificationCardRequest) details() customer.IdentificationCardDetails {
	return customer.IdentificationCardDetails{
		Type:           r.Type,
		Issuer:         r.Issuer,
		ExpirationDate: r.ExpirationDate,
	}
}
