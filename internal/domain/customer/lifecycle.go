package customer

import (
	"slices"
	"strings"

	"github.com/microfinance/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// State is the lifecycle state of a customer
type State string

const (
	StatePending State = "PENDING"
	StateActive  State = "ACTIVE"
	StateLocked  State = "LOCKED"
	StateClosed  State = "CLOSED"
)

// IsValid reports whether s is a known state
func (s State) IsValid() bool {
	switch s {
	case StatePending, StateActive, StateLocked, StateClosed:
		return true
	}
	return false
}

// Action is a lifecycle command name
type Action string

const (
	ActionActivate Action = "ACTIVATE"
	ActionLock     Action = "LOCK"
	ActionUnlock   Action = "UNLOCK"
	ActionClose    Action = "CLOSE"
	ActionReopen   Action = "REOPEN"
)

// Actions lists every lifecycle command in table order
var Actions = []Action{ActionActivate, ActionLock, ActionUnlock, ActionClose, ActionReopen}

// Error codes for lifecycle rule violations
const (
	CodeIllegalTransition  = "ILLEGAL_TRANSITION"
	CodeUnsupportedAction  = "UNSUPPORTED_ACTION"
	CodeOpenMandatoryTasks = "OPEN_MANDATORY_TASKS"
)

// ParseAction resolves a command name case-insensitively
func ParseAction(name string) (Action, error) {
	action := Action(cases.Upper(language.Und).String(strings.TrimSpace(name)))
	if _, ok := transitions[action]; !ok {
		return "", shared.NewDomainError(CodeUnsupportedAction, "unsupported action: "+name)
	}
	return action, nil
}

// IsValid reports whether a is a known lifecycle command
func (a Action) IsValid() bool {
	_, ok := transitions[a]
	return ok
}

// Transition is one row of the lifecycle transition table
type Transition struct {
	Action Action
	// From lists the states the command may be applied in
	From []State
	// Gated transitions are blocked by open mandatory tasks assigned to Action
	Gated bool
	To    State
	// Prepares names the command whose predefined tasks are attached once
	// this transition succeeds. Empty when nothing is attached.
	Prepares Action
	// EventType is emitted on success
	EventType string
}

var transitions = map[Action]Transition{
	ActionActivate: {
		Action:    ActionActivate,
		From:      []State{StatePending},
		Gated:     true,
		To:        StateActive,
		EventType: EventTypeCustomerActivated,
	},
	ActionLock: {
		Action:    ActionLock,
		From:      []State{StateActive},
		To:        StateLocked,
		Prepares:  ActionUnlock,
		EventType: EventTypeCustomerLocked,
	},
	ActionUnlock: {
		Action:    ActionUnlock,
		From:      []State{StateLocked},
		Gated:     true,
		To:        StateActive,
		EventType: EventTypeCustomerUnlocked,
	},
	ActionClose: {
		Action:    ActionClose,
		From:      []State{StateActive, StateLocked, StatePending},
		To:        StateClosed,
		Prepares:  ActionReopen,
		EventType: EventTypeCustomerClosed,
	},
	ActionReopen: {
		Action:    ActionReopen,
		From:      []State{StateClosed},
		Gated:     true,
		To:        StateActive,
		EventType: EventTypeCustomerReopened,
	},
}

// CreationPrepares is the command whose predefined tasks attach when a
// customer is created
const CreationPrepares = ActionActivate

// TransitionFor looks up the table row for a command
func TransitionFor(action Action) (Transition, bool) {
	t, ok := transitions[action]
	return t, ok
}

// Allows reports whether the transition may start from state
func (t Transition) Allows(state State) bool {
	return slices.Contains(t.From, state)
}

// AvailableActions returns the commands whose required state matches,
// ignoring task gating
func AvailableActions(state State) []Action {
	actions := make([]Action, 0, 2)
	for _, a := range Actions {
		if transitions[a].Allows(state) {
			actions = append(actions, a)
		}
	}
	return actions
}
