package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/application/uow"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/task"
	"go.uber.org/zap"
)

// Observer is told about gating decisions worth counting
type Observer interface {
	DuplicateTaskAttached(ctx context.Context, tenantID uuid.UUID, taskIdentifier string)
}

type nopObserver struct{}

func (nopObserver) DuplicateTaskAttached(context.Context, uuid.UUID, string) {}

// GatingEngineOption configures a GatingEngine
type GatingEngineOption func(*GatingEngine)

// WithDeduplication skips a predefined definition when the customer
// already has an open instance of it
func WithDeduplication(enabled bool) GatingEngineOption {
	return func(e *GatingEngine) {
		e.dedupe = enabled
	}
}

// WithLogger sets the engine logger
func WithLogger(l *zap.Logger) GatingEngineOption {
	return func(e *GatingEngine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver sets the observer notified about duplicate attachments
func WithObserver(o Observer) GatingEngineOption {
	return func(e *GatingEngine) {
		if o != nil {
			e.observer = o
		}
	}
}

// GatingEngine materialises predefined tasks and answers whether open
// mandatory tasks block a lifecycle command. It always runs on the
// repositories of the caller's transaction.
type GatingEngine struct {
	dedupe   bool
	observer Observer
	logger   *zap.Logger
}

// NewGatingEngine creates a gating engine
func NewGatingEngine(opts ...GatingEngineOption) *GatingEngine {
	e := &GatingEngine{observer: nopObserver{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AttachPredefinedTasks creates an instance of every predefined definition
// assigned to fired. Without deduplication repeated firings stack duplicate
// instances; each duplicate is logged and reported to the observer.
func (e *GatingEngine) AttachPredefinedTasks(ctx context.Context, repos uow.Repositories, c *customer.Customer, fired customer.Action) ([]*task.Instance, error) {
	defs, err := repos.TaskDefinitions.FindPredefined(ctx, c.TenantID)
	if err != nil {
		return nil, fmt.Errorf("loading predefined tasks: %w", err)
	}
	selected := task.SelectPredefined(defs, fired)
	if len(selected) == 0 {
		return nil, nil
	}

	existing, err := repos.TaskInstances.FindByCustomer(ctx, c.TenantID, c.ID, false)
	if err != nil {
		return nil, fmt.Errorf("loading customer tasks: %w", err)
	}

	attached := make([]*task.Instance, 0, len(selected))
	for i := range selected {
		def := &selected[i]
		if task.HasOpen(existing, def.ID) {
			if e.dedupe {
				e.logger.Debug("Predefined task already open, skipping",
					zap.String("customer", c.Identifier),
					zap.String("task", def.Identifier))
				continue
			}
			e.logger.Warn("Attaching duplicate predefined task",
				zap.String("customer", c.Identifier),
				zap.String("task", def.Identifier),
				zap.String("fired", string(fired)))
			e.observer.DuplicateTaskAttached(ctx, c.TenantID, def.Identifier)
		}

		instance := task.NewInstance(c.ID, def)
		if err := repos.TaskInstances.Save(ctx, instance); err != nil {
			return nil, fmt.Errorf("attaching task %s: %w", def.Identifier, err)
		}
		if err := repos.Outbox.Publish(ctx, task.NewInstanceEvent(task.EventTypeTaskAttached, instance, c.Identifier, def.Identifier)); err != nil {
			return nil, err
		}
		attached = append(attached, instance)
	}
	return attached, nil
}

// OpenMandatoryTasks returns the open mandatory tasks of the customer that
// gate the command
func (e *GatingEngine) OpenMandatoryTasks(ctx context.Context, repos uow.Repositories, c *customer.Customer, gated customer.Action) ([]task.Assignment, error) {
	assignments, err := e.Assignments(ctx, repos, c, false)
	if err != nil {
		return nil, err
	}
	return task.OpenMandatory(assignments, gated), nil
}

// HasOpenMandatoryTasks reports whether any open mandatory task blocks the command
func (e *GatingEngine) HasOpenMandatoryTasks(ctx context.Context, repos uow.Repositories, c *customer.Customer, gated customer.Action) (bool, error) {
	blocking, err := e.OpenMandatoryTasks(ctx, repos, c, gated)
	if err != nil {
		return false, err
	}
	return len(blocking) > 0, nil
}

// Assignments loads the customer's task instances joined with their definitions
func (e *GatingEngine) Assignments(ctx context.Context, repos uow.Repositories, c *customer.Customer, includeExecuted bool) ([]task.Assignment, error) {
	instances, err := repos.TaskInstances.FindByCustomer(ctx, c.TenantID, c.ID, includeExecuted)
	if err != nil {
		return nil, fmt.Errorf("loading customer tasks: %w", err)
	}
	if len(instances) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(instances))
	seen := make(map[uuid.UUID]bool, len(instances))
	for _, i := range instances {
		if !seen[i.DefinitionID] {
			seen[i.DefinitionID] = true
			ids = append(ids, i.DefinitionID)
		}
	}
	defs, err := repos.TaskDefinitions.FindByIDs(ctx, c.TenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("loading task definitions: %w", err)
	}
	byID := make(map[uuid.UUID]task.Definition, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}

	assignments := make([]task.Assignment, 0, len(instances))
	for _, i := range instances {
		def, ok := byID[i.DefinitionID]
		if !ok {
			continue
		}
		assignments = append(assignments, task.Assignment{Instance: i, Definition: def})
	}
	return assignments, nil
}
