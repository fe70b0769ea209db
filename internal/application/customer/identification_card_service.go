package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/application/uow"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/shared"
)

// IdentificationCardService manages the identity documents of customers
type IdentificationCardService struct {
	uow uow.UnitOfWork
}

// NewIdentificationCardService creates a new IdentificationCardService
func NewIdentificationCardService(u uow.UnitOfWork) *IdentificationCardService {
	return &IdentificationCardService{uow: u}
}

// Create adds a card; the number must be new for the customer
func (s *IdentificationCardService) Create(ctx context.Context, tenantID uuid.UUID, identifier string, actor uuid.UUID, req CreateIdentificationCardRequest) (*IdentificationCardResponse, error) {
	var resp IdentificationCardResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, identifier)
		if err != nil {
			return err
		}
		if _, err := repos.IdentificationCards.FindByNumber(ctx, tenantID, c.ID, req.Number); err == nil {
			return shared.AlreadyExists("IdentificationCard", req.Number)
		} else if !shared.IsNotFound(err) {
			return err
		}

		card, err := customer.NewIdentificationCard(c, req.Number, req.details(), actor)
		if err != nil {
			return err
		}
		if err := repos.IdentificationCards.Save(ctx, card); err != nil {
			return err
		}
		if err := repos.Outbox.Publish(ctx, customer.NewIdentificationCardEvent(customer.EventTypeIdentificationCardCreated, c, card)); err != nil {
			return err
		}
		resp = ToIdentificationCardResponse(card)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns every card of a customer
func (s *IdentificationCardService) List(ctx context.Context, tenantID uuid.UUID, identifier string) ([]IdentificationCardResponse, error) {
	var resp []IdentificationCardResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, identifier)
		if err != nil {
			return err
		}
		cards, err := repos.IdentificationCards.FindByCustomer(ctx, tenantID, c.ID)
		if err != nil {
			return err
		}
		resp = make([]IdentificationCardResponse, len(cards))
		for i := range cards {
			resp[i] = ToIdentificationCardResponse(&cards[i])
		}
		return nil
	})
	return resp, err
}

// Get returns one card
func (s *IdentificationCardService) Get(ctx context.Context, tenantID uuid.UUID, identifier, number string) (*IdentificationCardResponse, error) {
	var resp IdentificationCardResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		_, card, err := findCard(ctx, repos, tenantID, identifier, number)
		if err != nil {
			return err
		}
		resp = ToIdentificationCardResponse(card)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update replaces the details of a card
func (s *IdentificationCardService) Update(ctx context.Context, tenantID uuid.UUID, identifier, number string, actor uuid.UUID, req UpdateIdentificationCardRequest) (*IdentificationCardResponse, error) {
	var resp IdentificationCardResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		_, card, err := findCard(ctx, repos, tenantID, identifier, number)
		if err != nil {
			return err
		}
		if err := card.Change(req.details(), actor); err != nil {
			return err
		}
		if err := repos.IdentificationCards.Save(ctx, card); err != nil {
			return err
		}
		resp = ToIdentificationCardResponse(card)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes a card
func (s *IdentificationCardService) Delete(ctx context.Context, tenantID uuid.UUID, identifier, number string) error {
	return s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, card, err := findCard(ctx, repos, tenantID, identifier, number)
		if err != nil {
			return err
		}
		if err := repos.IdentificationCards.Delete(ctx, tenantID, c.ID, card.Number); err != nil {
			return err
		}
		return repos.Outbox.Publish(ctx, customer.NewIdentificationCardEvent(customer.EventTypeIdentificationCardDeleted, c, card))
	})
}

func findCard(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, identifier, number string) (*customer.Customer, *customer.IdentificationCard, error) {
	c, err := findCustomer(ctx, repos, tenantID, identifier)
	if err != nil {
		return nil, nil, err
	}
	card, err := repos.IdentificationCards.FindByNumber(ctx, tenantID, c.ID, number)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, nil, shared.NotFound("IdentificationCard", number)
		}
		return nil, nil, err
	}
	return c, card, nil
}
