package customer

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
)

// IdentificationCard is an identity document on file for a customer.
// Its number is unique per customer.
type IdentificationCard struct {
	shared.BaseEntity
	shared.AuditInfo
	TenantID       uuid.UUID
	CustomerID     uuid.UUID
	Number         string
	Type           string
	Issuer         string
	ExpirationDate time.Time
}

// IdentificationCardDetails holds the mutable card attributes
type IdentificationCardDetails struct {
	Type           string
	Issuer         string
	ExpirationDate time.Time
}

// NewIdentificationCard creates a card for customer c
func NewIdentificationCard(c *Customer, number string, details IdentificationCardDetails, actor uuid.UUID) (*IdentificationCard, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "identification card number cannot be empty")
	}
	if err := validateCardDetails(details); err != nil {
		return nil, err
	}
	return &IdentificationCard{
		BaseEntity:     shared.NewBaseEntity(),
		AuditInfo:      shared.NewAuditInfo(actor),
		TenantID:       c.TenantID,
		CustomerID:     c.ID,
		Number:         number,
		Type:           strings.TrimSpace(details.Type),
		Issuer:         strings.TrimSpace(details.Issuer),
		ExpirationDate: details.ExpirationDate,
	}, nil
}

// Change replaces the card details
func (card *IdentificationCard) Change(details IdentificationCardDetails, actor uuid.UUID) error {
	if err := validateCardDetails(details); err != nil {
		return err
	}
	card.Type = strings.TrimSpace(details.Type)
	card.Issuer = strings.TrimSpace(details.Issuer)
	card.ExpirationDate = details.ExpirationDate
	card.Touch(actor)
	return nil
}

// IsExpired reports whether the card expired before at
func (card *IdentificationCard) IsExpired(at time.Time) bool {
	return card.ExpirationDate.Before(at)
}

func validateCardDetails(d IdentificationCardDetails) error {
	if strings.TrimSpace(d.Type) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "identification card type cannot be empty")
	}
	if d.ExpirationDate.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidInput, "identification card expiration date is required")
	}
	return nil
}
