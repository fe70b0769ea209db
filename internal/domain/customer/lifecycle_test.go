package customer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	for _, name := range []string{"ACTIVATE", "activate", " Lock ", "unlock", "Close", "REOPEN"} {
		t.Run(name, func(t *testing.T) {
			a, err := ParseAction(name)
			require.NoError(t, err)
			assert.True(t, a.IsValid())
		})
	}

	_, err := ParseAction("DELETE")
	assert.True(t, shared.HasCode(err, CodeUnsupportedAction))
}

func TestTransitionTable(t *testing.T) {
	states := []State{StatePending, StateActive, StateLocked, StateClosed}
	want := map[Action]map[State]State{
		ActionActivate: {StatePending: StateActive},
		ActionLock:     {StateActive: StateLocked},
		ActionUnlock:   {StateLocked: StateActive},
		ActionClose:    {StateActive: StateClosed, StateLocked: StateClosed, StatePending: StateClosed},
		ActionReopen:   {StateClosed: StateActive},
	}

	for _, action := range Actions {
		for _, from := range states {
			t.Run(string(action)+"_from_"+string(from), func(t *testing.T) {
				c := newTestCustomer(t)
				c.CurrentState = from

				audit, err := c.Apply(LifecycleCommand{Action: action, Actor: uuid.New()})

				to, allowed := want[action][from]
				if !allowed {
					assert.True(t, shared.HasCode(err, CodeIllegalTransition))
					assert.Nil(t, audit)
					assert.Equal(t, from, c.CurrentState)
					assert.Empty(t, c.GetDomainEvents())
					return
				}
				require.NoError(t, err)
				assert.Equal(t, to, c.CurrentState)
				assert.True(t, c.CurrentState.IsValid())
			})
		}
	}
}

func TestTransition_GatingAndPreparation(t *testing.T) {
	gated := map[Action]bool{ActionActivate: true, ActionUnlock: true, ActionReopen: true}
	prepares := map[Action]Action{ActionLock: ActionUnlock, ActionClose: ActionReopen}

	for _, a := range Actions {
		tr, ok := TransitionFor(a)
		require.True(t, ok)
		assert.Equal(t, gated[a], tr.Gated, a)
		assert.Equal(t, prepares[a], tr.Prepares, a)
	}
	assert.Equal(t, ActionActivate, CreationPrepares)
}

func TestCustomer_Apply(t *testing.T) {
	t.Run("activate stamps application date once", func(t *testing.T) {
		c := newTestCustomer(t)
		actor := uuid.New()

		audit, err := c.Apply(LifecycleCommand{Action: ActionActivate, Comment: "documents verified", Actor: actor})
		require.NoError(t, err)
		require.NotNil(t, c.ApplicationDate)
		first := *c.ApplicationDate

		assert.Equal(t, ActionActivate, audit.Action)
		assert.Equal(t, "documents verified", audit.Comment)
		assert.Equal(t, actor, audit.CreatedBy)
		assert.Equal(t, c.ID, audit.CustomerID)
		assert.Equal(t, actor, *c.LastModifiedBy)

		events := c.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*LifecycleEvent)
		require.True(t, ok)
		assert.Equal(t, EventTypeCustomerActivated, evt.EventType())
		assert.Equal(t, StatePending, evt.FromState)
		assert.Equal(t, StateActive, evt.ToState)

		_, err = c.Apply(LifecycleCommand{Action: ActionClose, Actor: actor})
		require.NoError(t, err)
		_, err = c.Apply(LifecycleCommand{Action: ActionReopen, Actor: actor})
		require.NoError(t, err)
		assert.Equal(t, StateActive, c.CurrentState)
		assert.Equal(t, first, *c.ApplicationDate)
	})

	t.Run("lock then unlock keeps application date", func(t *testing.T) {
		c := newTestCustomer(t)
		_, err := c.Apply(LifecycleCommand{Action: ActionActivate, Actor: uuid.New()})
		require.NoError(t, err)
		applied := *c.ApplicationDate

		_, err = c.Apply(LifecycleCommand{Action: ActionLock, Actor: uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, StateLocked, c.CurrentState)

		_, err = c.Apply(LifecycleCommand{Action: ActionUnlock, Actor: uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, StateActive, c.CurrentState)
		assert.Equal(t, applied, *c.ApplicationDate)
	})

	t.Run("closing twice is rejected", func(t *testing.T) {
		c := newTestCustomer(t)
		_, err := c.Apply(LifecycleCommand{Action: ActionClose, Actor: uuid.New()})
		require.NoError(t, err)

		_, err = c.Apply(LifecycleCommand{Action: ActionClose, Actor: uuid.New()})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, CodeIllegalTransition, domainErr.Code)
		assert.Contains(t, domainErr.Message, "CLOSED")
	})

	t.Run("unknown action", func(t *testing.T) {
		c := newTestCustomer(t)
		_, err := c.Apply(LifecycleCommand{Action: "DELETE"})
		assert.True(t, shared.HasCode(err, CodeUnsupportedAction))
	})
}

func TestAvailableActions(t *testing.T) {
	assert.Equal(t, []Action{ActionActivate, ActionClose}, AvailableActions(StatePending))
	assert.Equal(t, []Action{ActionLock, ActionClose}, AvailableActions(StateActive))
	assert.Equal(t, []Action{ActionUnlock, ActionClose}, AvailableActions(StateLocked))
	assert.Equal(t, []Action{ActionReopen}, AvailableActions(StateClosed))
}
