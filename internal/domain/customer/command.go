package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
)

// Command is the immutable audit record appended on every successful
// lifecycle transition
type Command struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	CustomerID uuid.UUID
	Action     Action
	Comment    string
	CreatedBy  uuid.UUID
	CreatedOn  time.Time
}

// LifecycleCommand is an inbound request to move a customer through its lifecycle
type LifecycleCommand struct {
	Action  Action
	Comment string
	Actor   uuid.UUID
}

// transitionHandler applies one row of the transition table to a customer
// and produces the audit record and the event for it
type transitionHandler func(c *Customer, t Transition, cmd LifecycleCommand) (*Command, shared.DomainEvent)

var handlers = map[Action]transitionHandler{
	ActionActivate: activate,
	ActionLock:     transit,
	ActionUnlock:   transit,
	ActionClose:    transit,
	ActionReopen:   transit,
}

// Apply runs the handler registered for cmd.Action. Task gating is the
// caller's concern and must happen before Apply.
func (c *Customer) Apply(cmd LifecycleCommand) (*Command, error) {
	t, err := c.CheckTransition(cmd.Action)
	if err != nil {
		return nil, err
	}
	handler, ok := handlers[cmd.Action]
	if !ok {
		return nil, shared.NewDomainError(CodeUnsupportedAction, "no handler for action "+string(cmd.Action))
	}

	audit, event := handler(c, t, cmd)
	c.AddDomainEvent(event)
	return audit, nil
}

func activate(c *Customer, t Transition, cmd LifecycleCommand) (*Command, shared.DomainEvent) {
	if c.ApplicationDate == nil {
		today := time.Now()
		c.ApplicationDate = &today
	}
	return transit(c, t, cmd)
}

func transit(c *Customer, t Transition, cmd LifecycleCommand) (*Command, shared.DomainEvent) {
	from := c.CurrentState
	c.CurrentState = t.To
	c.Touch(cmd.Actor)

	audit := &Command{
		ID:         uuid.New(),
		TenantID:   c.TenantID,
		CustomerID: c.ID,
		Action:     cmd.Action,
		Comment:    cmd.Comment,
		CreatedBy:  cmd.Actor,
		CreatedOn:  *c.LastModifiedOn,
	}
	return audit, NewLifecycleEvent(c, t, from, cmd)
}
