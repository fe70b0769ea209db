package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	tasksvc "github.com/microfinance/backend/internal/application/task"
	"github.com/microfinance/backend/internal/application/uow"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LifecycleObserver is told about every lifecycle decision
type LifecycleObserver interface {
	TransitionAccepted(ctx context.Context, tenantID uuid.UUID, action customer.Action)
	TransitionRejected(ctx context.Context, tenantID uuid.UUID, action customer.Action, code string)
}

type nopLifecycleObserver struct{}

func (nopLifecycleObserver) TransitionAccepted(context.Context, uuid.UUID, customer.Action) {}
func (nopLifecycleObserver) TransitionRejected(context.Context, uuid.UUID, customer.Action, string) {}

// LifecycleService dispatches lifecycle commands. Each command runs in one
// unit of work: state check, task gate, transition, audit row, predefined
// task attachment and event publication commit or roll back together.
type LifecycleService struct {
	uow      uow.UnitOfWork
	engine   *tasksvc.GatingEngine
	observer LifecycleObserver
	logger   *zap.Logger
}

// NewLifecycleService creates a new LifecycleService. observer may be nil.
func NewLifecycleService(u uow.UnitOfWork, engine *tasksvc.GatingEngine, observer LifecycleObserver, logger *zap.Logger) *LifecycleService {
	if observer == nil {
		observer = nopLifecycleObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{uow: u, engine: engine, observer: observer, logger: logger}
}

// ExecuteCommand moves a customer through its lifecycle
func (s *LifecycleService) ExecuteCommand(ctx context.Context, tenantID uuid.UUID, identifier string, actor uuid.UUID, req ExecuteCommandRequest) (*CommandResult, error) {
	action, err := customer.ParseAction(req.Action)
	if err != nil {
		s.reject(ctx, tenantID, identifier, customer.Action(req.Action), err)
		return nil, err
	}

	var result CommandResult
	err = s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, identifier)
		if err != nil {
			return err
		}

		t, err := c.CheckTransition(action)
		if err != nil {
			return err
		}
		if t.Gated {
			blocking, err := s.engine.OpenMandatoryTasks(ctx, repos, c, action)
			if err != nil {
				return err
			}
			if len(blocking) > 0 {
				names := make([]string, len(blocking))
				for i, b := range blocking {
					names[i] = b.Definition.Identifier
				}
				return shared.NewDomainError(customer.CodeOpenMandatoryTasks,
					"customer "+identifier+" has open mandatory tasks: "+strings.Join(names, ", "))
			}
		}

		from := c.CurrentState
		audit, err := c.Apply(customer.LifecycleCommand{Action: action, Comment: req.Comment, Actor: actor})
		if err != nil {
			return err
		}
		if err := repos.Customers.Save(ctx, c); err != nil {
			return err
		}
		if err := repos.Commands.Append(ctx, audit); err != nil {
			return err
		}
		if err := uow.PublishEvents(ctx, repos, c); err != nil {
			return err
		}

		result = CommandResult{
			Identifier:   c.Identifier,
			Action:       string(action),
			FromState:    string(from),
			CurrentState: string(c.CurrentState),
		}
		if t.Prepares != "" {
			instances, err := s.engine.AttachPredefinedTasks(ctx, repos, c, t.Prepares)
			if err != nil {
				return err
			}
			result.AttachedTasks = len(instances)
		}
		return nil
	})
	if err != nil {
		s.reject(ctx, tenantID, identifier, action, err)
		return nil, err
	}

	s.observer.TransitionAccepted(ctx, tenantID, action)
	s.logger.Info("Lifecycle command executed",
		zap.String("customer", identifier),
		zap.String("action", string(action)),
		zap.String("from", result.FromState),
		zap.String("to", result.CurrentState))
	return &result, nil
}

func (s *LifecycleService) reject(ctx context.Context, tenantID uuid.UUID, identifier string, action customer.Action, err error) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		s.logger.Error("Lifecycle command failed",
			zap.String("customer", identifier),
			zap.String("action", string(action)),
			zap.Error(err))
		return
	}
	s.observer.TransitionRejected(ctx, tenantID, action, domainErr.Code)
	s.logger.Warn("Lifecycle command rejected",
		zap.String("customer", identifier),
		zap.String("action", string(action)),
		zap.String("code", domainErr.Code),
		zap.String("reason", domainErr.Message))
}

// ListCommands returns the audit log of a customer, oldest first
func (s *LifecycleService) ListCommands(ctx context.Context, tenantID uuid.UUID, identifier string) ([]CommandResponse, error) {
	var resp []CommandResponse
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, identifier)
		if err != nil {
			return err
		}
		commands, err := repos.Commands.FindByCustomer(ctx, tenantID, c.ID)
		if err != nil {
			return err
		}
		resp = make([]CommandResponse, len(commands))
		for i := range commands {
			resp[i] = ToCommandResponse(&commands[i])
		}
		return nil
	})
	return resp, err
}

// AvailableActions returns the commands that would currently succeed:
// the state must match and gated commands must have no open mandatory task
func (s *LifecycleService) AvailableActions(ctx context.Context, tenantID uuid.UUID, identifier string) ([]string, error) {
	actions := make([]string, 0, 2)
	err := s.uow.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		c, err := findCustomer(ctx, repos, tenantID, identifier)
		if err != nil {
			return err
		}
		for _, a := range customer.AvailableActions(c.CurrentState) {
			t, _ := customer.TransitionFor(a)
			if t.Gated {
				blocked, err := s.engine.HasOpenMandatoryTasks(ctx, repos, c, a)
				if err != nil {
					return err
				}
				if blocked {
					continue
				}
			}
			actions = append(actions, string(a))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return actions, nil
}
