package customer

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	tasksvc "github.com/microfinance/backend/internal/application/task"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/internal/domain/task"
	"github.com/microfinance/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	accepted []customer.Action
	rejected []string
}

func (o *recordingObserver) TransitionAccepted(_ context.Context, _ uuid.UUID, action customer.Action) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.accepted = append(o.accepted, action)
}

func (o *recordingObserver) TransitionRejected(_ context.Context, _ uuid.UUID, _ customer.Action, code string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, code)
}

type lifecycleFixture struct {
	mocks    *testutil.Mocks
	observer *recordingObserver
	service  *LifecycleService
	customer *customer.Customer
}

func newLifecycleFixture(t *testing.T, state customer.State) *lifecycleFixture {
	t.Helper()
	c, err := customer.NewCustomer(testutil.TestTenantID(), "C1", customer.Profile{GivenName: "A", Surname: "B"}, testutil.TestUserID())
	require.NoError(t, err)
	c.ClearDomainEvents()
	c.CurrentState = state

	m := testutil.NewMocks()
	m.Customers.On("FindByIdentifier", mock.Anything, testutil.TestTenantID(), "C1").Return(c, nil)
	obs := &recordingObserver{}
	return &lifecycleFixture{
		mocks:    m,
		observer: obs,
		service:  NewLifecycleService(m.UnitOfWork(), tasksvc.NewGatingEngine(), obs, nil),
		customer: c,
	}
}

// noTasks wires an empty task catalog and no attached tasks
func (f *lifecycleFixture) noTasks() *lifecycleFixture {
	f.mocks.TaskInstances.On("FindByCustomer", mock.Anything, mock.Anything, f.customer.ID, false).Return([]task.Instance{}, nil)
	f.mocks.TaskDefinitions.On("FindPredefined", mock.Anything, mock.Anything).Return([]task.Definition{}, nil)
	return f
}

func (f *lifecycleFixture) acceptsWrites() *lifecycleFixture {
	f.mocks.Customers.On("Save", mock.Anything, f.customer).Return(nil)
	f.mocks.Commands.On("Append", mock.Anything, mock.AnythingOfType("*customer.Command")).Return(nil)
	return f
}

func (f *lifecycleFixture) execute(action string) (*CommandResult, error) {
	return f.service.ExecuteCommand(context.Background(), testutil.TestTenantID(), "C1", testutil.TestUserID(),
		ExecuteCommandRequest{Action: action, Comment: "via test"})
}

func TestLifecycleService_ActivateScenario(t *testing.T) {
	f := newLifecycleFixture(t, customer.StatePending).noTasks().acceptsWrites()

	result, err := f.execute("ACTIVATE")

	require.NoError(t, err)
	assert.Equal(t, "PENDING", result.FromState)
	assert.Equal(t, "ACTIVE", result.CurrentState)
	assert.Equal(t, customer.StateActive, f.customer.CurrentState)
	assert.NotNil(t, f.customer.ApplicationDate)
	f.mocks.Commands.AssertCalled(t, "Append", mock.Anything, mock.MatchedBy(func(cmd *customer.Command) bool {
		return cmd.Action == customer.ActionActivate && cmd.Comment == "via test" && cmd.CustomerID == f.customer.ID
	}))
	assert.Equal(t, []string{customer.EventTypeCustomerActivated}, f.mocks.Outbox.Types())
	assert.Equal(t, []customer.Action{customer.ActionActivate}, f.observer.accepted)
}

func TestLifecycleService_ActionIsCaseInsensitive(t *testing.T) {
	f := newLifecycleFixture(t, customer.StateActive).noTasks().acceptsWrites()

	result, err := f.execute("lock")

	require.NoError(t, err)
	assert.Equal(t, "LOCKED", result.CurrentState)
}

func TestLifecycleService_GatedByOpenMandatoryTask(t *testing.T) {
	tenantID := testutil.TestTenantID()
	f := newLifecycleFixture(t, customer.StatePending)
	kyc, err := task.NewDefinition(tenantID, "kyc", task.DefinitionSpec{
		Type: task.TypeIDCard, Name: "KYC", AssignedCommands: []customer.Action{customer.ActionActivate}, Mandatory: true,
	}, testutil.TestUserID())
	require.NoError(t, err)

	open := *task.NewInstance(f.customer.ID, kyc)

	f.mocks.TaskDefinitions.On("FindByIDs", mock.Anything, tenantID, []uuid.UUID{kyc.ID}).Return([]task.Definition{*kyc}, nil)
	f.mocks.TaskInstances.On("FindByCustomer", mock.Anything, tenantID, f.customer.ID, false).Return([]task.Instance{open}, nil).Once()

	_, err = f.execute("ACTIVATE")

	require.Error(t, err)
	assert.True(t, shared.HasCode(err, customer.CodeOpenMandatoryTasks))
	assert.ErrorContains(t, err, "kyc")
	assert.Equal(t, customer.StatePending, f.customer.CurrentState)
	assert.Nil(t, f.customer.ApplicationDate)
	f.mocks.Customers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.mocks.Commands.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	assert.Empty(t, f.mocks.Outbox.Events)
	assert.Equal(t, []string{customer.CodeOpenMandatoryTasks}, f.observer.rejected)

	// task executed in the meantime, so no open instances remain
	f.mocks.TaskInstances.On("FindByCustomer", mock.Anything, tenantID, f.customer.ID, false).Return([]task.Instance{}, nil)
	f.acceptsWrites()

	result, err := f.execute("ACTIVATE")

	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", result.CurrentState)
}

func TestLifecycleService_IllegalTransitions(t *testing.T) {
	tests := []struct {
		state  customer.State
		action string
	}{
		{customer.StateActive, "ACTIVATE"},
		{customer.StatePending, "LOCK"},
		{customer.StateActive, "UNLOCK"},
		{customer.StateClosed, "CLOSE"},
		{customer.StateLocked, "REOPEN"},
	}

	for _, tt := range tests {
		t.Run(tt.action+" from "+string(tt.state), func(t *testing.T) {
			f := newLifecycleFixture(t, tt.state)

			_, err := f.execute(tt.action)

			assert.True(t, shared.HasCode(err, customer.CodeIllegalTransition))
			assert.Equal(t, tt.state, f.customer.CurrentState)
			f.mocks.Commands.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		})
	}
}

func TestLifecycleService_UnsupportedAction(t *testing.T) {
	f := newLifecycleFixture(t, customer.StateActive)

	_, err := f.execute("DELETE")

	assert.True(t, shared.HasCode(err, customer.CodeUnsupportedAction))
	assert.Equal(t, []string{customer.CodeUnsupportedAction}, f.observer.rejected)
	f.mocks.Customers.AssertNotCalled(t, "FindByIdentifier", mock.Anything, mock.Anything, mock.Anything)
}

func TestLifecycleService_LockUnlockKeepsApplicationDate(t *testing.T) {
	f := newLifecycleFixture(t, customer.StatePending).noTasks().acceptsWrites()

	_, err := f.execute("ACTIVATE")
	require.NoError(t, err)
	applied := *f.customer.ApplicationDate

	_, err = f.execute("LOCK")
	require.NoError(t, err)
	result, err := f.execute("UNLOCK")
	require.NoError(t, err)

	assert.Equal(t, "ACTIVE", result.CurrentState)
	assert.Equal(t, applied, *f.customer.ApplicationDate)
}

func TestLifecycleService_CloseReopenRoundTrip(t *testing.T) {
	f := newLifecycleFixture(t, customer.StateActive).noTasks().acceptsWrites()

	_, err := f.execute("CLOSE")
	require.NoError(t, err)

	_, err = f.execute("CLOSE")
	assert.True(t, shared.HasCode(err, customer.CodeIllegalTransition))

	result, err := f.execute("REOPEN")
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", result.CurrentState)
	assert.Equal(t, []string{
		customer.EventTypeCustomerClosed,
		customer.EventTypeCustomerReopened,
	}, f.mocks.Outbox.Types())
}

func TestLifecycleService_LockAttachesUnlockTasks(t *testing.T) {
	tenantID := testutil.TestTenantID()
	f := newLifecycleFixture(t, customer.StateActive).acceptsWrites()
	review, err := task.NewDefinition(tenantID, "review", task.DefinitionSpec{
		Type: task.TypeFourEyes, Name: "Review", AssignedCommands: []customer.Action{customer.ActionUnlock},
		Mandatory: true, Predefined: true,
	}, testutil.TestUserID())
	require.NoError(t, err)

	f.mocks.TaskDefinitions.On("FindPredefined", mock.Anything, tenantID).Return([]task.Definition{*review}, nil)
	f.mocks.TaskInstances.On("FindByCustomer", mock.Anything, tenantID, f.customer.ID, false).Return([]task.Instance{}, nil)
	f.mocks.TaskInstances.On("Save", mock.Anything, mock.MatchedBy(func(i *task.Instance) bool {
		return i.DefinitionID == review.ID
	})).Return(nil).Once()

	result, err := f.execute("LOCK")

	require.NoError(t, err)
	assert.Equal(t, 1, result.AttachedTasks)
	assert.Equal(t, []string{customer.EventTypeCustomerLocked, task.EventTypeTaskAttached}, f.mocks.Outbox.Types())
	f.mocks.AssertExpectations(t)
}

func TestLifecycleService_AvailableActions(t *testing.T) {
	tenantID := testutil.TestTenantID()
	gate, err := task.NewDefinition(tenantID, "gate", task.DefinitionSpec{
		Type: task.TypeCustom, Name: "Gate", AssignedCommands: []customer.Action{customer.ActionActivate}, Mandatory: true,
	}, testutil.TestUserID())
	require.NoError(t, err)

	t.Run("pending without tasks", func(t *testing.T) {
		f := newLifecycleFixture(t, customer.StatePending).noTasks()
		actions, err := f.service.AvailableActions(context.Background(), tenantID, "C1")
		require.NoError(t, err)
		assert.Equal(t, []string{"ACTIVATE", "CLOSE"}, actions)
	})

	t.Run("pending with open mandatory task", func(t *testing.T) {
		f := newLifecycleFixture(t, customer.StatePending)
		f.mocks.TaskInstances.On("FindByCustomer", mock.Anything, tenantID, f.customer.ID, false).
			Return([]task.Instance{*task.NewInstance(f.customer.ID, gate)}, nil)
		f.mocks.TaskDefinitions.On("FindByIDs", mock.Anything, tenantID, []uuid.UUID{gate.ID}).Return([]task.Definition{*gate}, nil)

		actions, err := f.service.AvailableActions(context.Background(), tenantID, "C1")
		require.NoError(t, err)
		assert.Equal(t, []string{"CLOSE"}, actions)
	})

	t.Run("active is never gated", func(t *testing.T) {
		f := newLifecycleFixture(t, customer.StateActive)
		actions, err := f.service.AvailableActions(context.Background(), tenantID, "C1")
		require.NoError(t, err)
		assert.Equal(t, []string{"LOCK", "CLOSE"}, actions)
	})
}

func TestLifecycleService_ListCommands(t *testing.T) {
	f := newLifecycleFixture(t, customer.StateActive)
	f.mocks.Commands.On("FindByCustomer", mock.Anything, testutil.TestTenantID(), f.customer.ID).Return([]customer.Command{
		{ID: uuid.New(), Action: customer.ActionActivate, CreatedBy: testutil.TestUserID()},
	}, nil)

	commands, err := f.service.ListCommands(context.Background(), testutil.TestTenantID(), "C1")

	require.NoError(t, err)
	require.Len(t, commands, 1)
	assert.Equal(t, "ACTIVATE", commands[0].Action)
}
