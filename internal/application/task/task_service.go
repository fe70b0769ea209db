package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/application/uow"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/internal/domain/task"
	"go.uber.org/zap"
)

// TaskService manages the task catalog and the tasks attached to customers
type TaskService struct {
	uow    uow.UnitOfWork
	engine *GatingEngine
	logger *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(u uow.UnitOfWork, engine *GatingEngine, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{uow: u, engine: engine, logger: logger}
}

// CreateDefinition adds a definition to the catalog
func (s *TaskService) CreateDefinition(ctx context.Context, tenantID, actor uuid.UUID, req CreateTaskDefinitionRequest) (*TaskDefinitionResponse, error) {
	var resp TaskDefinitionResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		exists, err := repos.TaskDefinitions.ExistsByIdentifier(ctx, tenantID, req.Identifier)
		if err != nil {
			return err
		}
		if exists {
			return shared.AlreadyExists("Task", req.Identifier)
		}

		def, err := task.NewDefinition(tenantID, req.Identifier, req.spec(), actor)
		if err != nil {
			return err
		}
		if err := repos.TaskDefinitions.Save(ctx, def); err != nil {
			return err
		}
		if err := uow.PublishEvents(ctx, repos, def); err != nil {
			return err
		}
		resp = ToTaskDefinitionResponse(def)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateDefinition replaces a catalog entry
func (s *TaskService) UpdateDefinition(ctx context.Context, tenantID uuid.UUID, identifier string, actor uuid.UUID, req UpdateTaskDefinitionRequest) (*TaskDefinitionResponse, error) {
	if req.Identifier != "" && req.Identifier != identifier {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "task identifier cannot be changed")
	}

	var resp TaskDefinitionResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		def, err := findDefinition(ctx, repos, tenantID, identifier)
		if err != nil {
			return err
		}
		if err := def.Update(req.spec(), actor); err != nil {
			return err
		}
		if err := repos.TaskDefinitions.Save(ctx, def); err != nil {
			return err
		}
		if err := uow.PublishEvents(ctx, repos, def); err != nil {
			return err
		}
		resp = ToTaskDefinitionResponse(def)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetDefinition returns one catalog entry
func (s *TaskService) GetDefinition(ctx context.Context, tenantID uuid.UUID, identifier string) (*TaskDefinitionResponse, error) {
	var resp TaskDefinitionResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		def, err := findDefinition(ctx, repos, tenantID, identifier)
		if err != nil {
			return err
		}
		resp = ToTaskDefinitionResponse(def)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListDefinitions returns the whole catalog
func (s *TaskService) ListDefinitions(ctx context.Context, tenantID uuid.UUID) ([]TaskDefinitionResponse, error) {
	var resp []TaskDefinitionResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		defs, err := repos.TaskDefinitions.FindAll(ctx, tenantID)
		if err != nil {
			return err
		}
		resp = make([]TaskDefinitionResponse, len(defs))
		for i := range defs {
			resp[i] = ToTaskDefinitionResponse(&defs[i])
		}
		return nil
	})
	return resp, err
}

// AddTaskToCustomer attaches any definition to a customer, regardless of
// its mandatory and predefined flags
func (s *TaskService) AddTaskToCustomer(ctx context.Context, tenantID uuid.UUID, customerIdentifier, taskIdentifier string) (*CustomerTaskResponse, error) {
	var resp CustomerTaskResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, customerIdentifier)
		if err != nil {
			return err
		}
		def, err := findDefinition(ctx, repos, tenantID, taskIdentifier)
		if err != nil {
			return err
		}

		instance := task.NewInstance(c.ID, def)
		if err := repos.TaskInstances.Save(ctx, instance); err != nil {
			return err
		}
		if err := repos.Outbox.Publish(ctx, task.NewInstanceEvent(task.EventTypeTaskAttached, instance, c.Identifier, def.Identifier)); err != nil {
			return err
		}
		resp = ToCustomerTaskResponse(task.Assignment{Instance: *instance, Definition: *def})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task attached to customer",
		zap.String("customer", customerIdentifier),
		zap.String("task", taskIdentifier))
	return &resp, nil
}

// ExecuteTask marks the open instance of a task as executed by actor after
// checking the precondition of the task type
func (s *TaskService) ExecuteTask(ctx context.Context, tenantID uuid.UUID, customerIdentifier, taskIdentifier string, actor uuid.UUID, comment string) (*CustomerTaskResponse, error) {
	var resp CustomerTaskResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, customerIdentifier)
		if err != nil {
			return err
		}
		def, err := findDefinition(ctx, repos, tenantID, taskIdentifier)
		if err != nil {
			return err
		}

		instances, err := repos.TaskInstances.FindByCustomerAndDefinition(ctx, tenantID, c.ID, def.ID)
		if err != nil {
			return err
		}
		if len(instances) == 0 {
			return shared.NotFound("Task", taskIdentifier+" for customer "+customerIdentifier)
		}
		open := firstOpen(instances)
		if open == nil {
			return shared.NewDomainError(task.CodeAlreadyExecuted, "task "+taskIdentifier+" has already been executed")
		}

		ec := task.ExecutionContext{Actor: actor, Customer: c}
		if def.Type == task.TypeIDCard {
			if ec.IdentificationCards, err = repos.IdentificationCards.CountByCustomer(ctx, tenantID, c.ID); err != nil {
				return err
			}
		}
		if err := task.CheckPrecondition(def, ec); err != nil {
			return err
		}

		if err := open.Execute(actor, comment); err != nil {
			return err
		}
		if err := repos.TaskInstances.Save(ctx, open); err != nil {
			return err
		}
		if err := repos.Outbox.Publish(ctx, task.NewInstanceEvent(task.EventTypeTaskExecuted, open, c.Identifier, def.Identifier)); err != nil {
			return err
		}
		resp = ToCustomerTaskResponse(task.Assignment{Instance: *open, Definition: *def})
		return nil
	})
	if err != nil {
		s.logger.Warn("Task execution rejected",
			zap.String("customer", customerIdentifier),
			zap.String("task", taskIdentifier),
			zap.Error(err))
		return nil, err
	}
	return &resp, nil
}

// RemoveTaskFromCustomer detaches the open instances of a task. Nothing
// attached is not an error.
func (s *TaskService) RemoveTaskFromCustomer(ctx context.Context, tenantID uuid.UUID, customerIdentifier, taskIdentifier string) error {
	return s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, customerIdentifier)
		if err != nil {
			return err
		}
		def, err := findDefinition(ctx, repos, tenantID, taskIdentifier)
		if err != nil {
			return err
		}
		removed, err := repos.TaskInstances.DeleteOpen(ctx, tenantID, c.ID, def.ID)
		if err != nil {
			return err
		}
		s.logger.Info("Task detached from customer",
			zap.String("customer", customerIdentifier),
			zap.String("task", taskIdentifier),
			zap.Int64("removed", removed))
		return nil
	})
}

// ListTasksForCustomer returns the customer's tasks, optionally only the open ones
func (s *TaskService) ListTasksForCustomer(ctx context.Context, tenantID uuid.UUID, customerIdentifier string, includeExecuted bool) ([]CustomerTaskResponse, error) {
	var resp []CustomerTaskResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, customerIdentifier)
		if err != nil {
			return err
		}
		assignments, err := s.engine.Assignments(ctx, repos, c, includeExecuted)
		if err != nil {
			return err
		}
		resp = make([]CustomerTaskResponse, len(assignments))
		for i, a := range assignments {
			resp[i] = ToCustomerTaskResponse(a)
		}
		return nil
	})
	return resp, err
}

func firstOpen(instances []task.Instance) *task.Instance {
	for i := range instances {
		if instances[i].IsOpen() {
			return &instances[i]
		}
	}
	return nil
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

func findDefinition(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, identifier string) (*task.Definition, error) {
	def, err := repos.TaskDefinitions.FindByIdentifier(ctx, tenantID, identifier)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NotFound("Task", identifier)
		}
		return nil, fmt.Errorf("loading task %s: %w", identifier, err)
	}
	return def, nil
}
