package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	tasksvc "github.com/microfinance/backend/internal/application/task"
	"github.com/microfinance/backend/internal/application/uow"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService handles customer creation, profile updates and queries
type CustomerService struct {
	uow    uow.UnitOfWork
	engine *tasksvc.GatingEngine
	logger *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(u uow.UnitOfWork, engine *tasksvc.GatingEngine, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{uow: u, engine: engine, logger: logger}
}

// Create registers a PENDING customer and attaches the predefined tasks
// that gate its activation
func (s *CustomerService) Create(ctx context.Context, tenantID, actor uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	var resp CustomerResponse
	attached := 0
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		identifier := strings.TrimSpace(req.Identifier)
		exists, err := repos.Customers.ExistsByIdentifier(ctx, tenantID, identifier)
		if err != nil {
			return fmt.Errorf("checking customer identifier: %w", err)
		}
		if exists {
			return shared.AlreadyExists("Customer", identifier)
		}

		c, err := customer.NewCustomer(tenantID, identifier, req.profile(), actor)
		if err != nil {
			return err
		}
		if err := repos.Customers.Save(ctx, c); err != nil {
			return err
		}
		if err := uow.PublishEvents(ctx, repos, c); err != nil {
			return err
		}

		instances, err := s.engine.AttachPredefinedTasks(ctx, repos, c, customer.CreationPrepares)
		if err != nil {
			return err
		}
		attached = len(instances)
		resp = ToCustomerResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Customer created",
		zap.String("customer", resp.Identifier),
		zap.Int("attached_tasks", attached))
	return &resp, nil
}

// Get returns one customer by its identifier
func (s *CustomerService) Get(ctx context.Context, tenantID uuid.UUID, identifier string) (*CustomerResponse, error) {
	var resp CustomerResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, identifier)
		if err != nil {
			return err
		}
		resp = ToCustomerResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns a page of customers and the total match count
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	var (
		resp  []CustomerResponse
		total int64
	)
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		customers, n, err := repos.Customers.List(ctx, tenantID, filter.toDomain())
		if err != nil {
			return err
		}
		total = n
		resp = make([]CustomerResponse, len(customers))
		for i := range customers {
			resp[i] = ToCustomerResponse(&customers[i])
		}
		return nil
	})
	return resp, total, err
}

// Update replaces the descriptive attributes of a customer. State and
// application date can only change through lifecycle commands.
func (s *CustomerService) Update(ctx context.Context, tenantID uuid.UUID, identifier string, actor uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	var resp CustomerResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, identifier)
		if err != nil {
			return err
		}
		if err := c.Update(req.profile(), actor); err != nil {
			return err
		}
		if err := repos.Customers.Save(ctx, c); err != nil {
			return err
		}
		if err := uow.PublishEvents(ctx, repos, c); err != nil {
			return err
		}
		resp = ToCustomerResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func findCustomer(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, identifier string) (*customer.Customer, error) {
	c, err := repos.Customers.FindByIdentifier(ctx, tenantID, identifier)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NotFound("Customer", identifier)
		}
		return nil, fmt.Errorf("loading customer %s: %w", identifier, err)
	}
	return c, nil
}
