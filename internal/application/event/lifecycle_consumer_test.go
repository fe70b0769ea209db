package event

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/document"
	"github.com/microfinance/backend/internal/domain/task"
	"github.com/microfinance/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu          sync.Mutex
	transitions []string
	executed    []string
	completed   int
}

func (r *fakeRecorder) RecordTransition(_ context.Context, _ uuid.UUID, action, from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, action+":"+from+"->"+to)
}

func (r *fakeRecorder) RecordTaskExecuted(_ context.Context, _ uuid.UUID, taskIdentifier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executed = append(r.executed, taskIdentifier)
}

func (r *fakeRecorder) RecordDocumentCompleted(context.Context, uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

func TestLifecycleConsumer_EventTypes(t *testing.T) {
	types := NewLifecycleConsumer(&fakeRecorder{}, nil).EventTypes()

	for _, et := range customer.LifecycleEventTypes {
		assert.Contains(t, types, et)
	}
	assert.Contains(t, types, task.EventTypeTaskExecuted)
	assert.Contains(t, types, document.EventTypeDocumentCompleted)
	assert.NotContains(t, types, customer.EventTypeCustomerCreated)
}

func TestLifecycleConsumer_Handle(t *testing.T) {
	ctx := context.Background()
	rec := &fakeRecorder{}
	consumer := NewLifecycleConsumer(rec, nil)
	actor := testutil.TestUserID()

	c, err := customer.NewCustomer(testutil.TestTenantID(), "C1", customer.Profile{GivenName: "A", Surname: "B"}, actor)
	require.NoError(t, err)
	c.ClearDomainEvents()
	_, err = c.Apply(customer.LifecycleCommand{Action: customer.ActionActivate, Actor: actor})
	require.NoError(t, err)
	require.NoError(t, consumer.Handle(ctx, c.GetDomainEvents()[0]))

	def, err := task.NewDefinition(testutil.TestTenantID(), "kyc", task.DefinitionSpec{Type: task.TypeCustom, Name: "KYC"}, actor)
	require.NoError(t, err)
	instance := task.NewInstance(c.ID, def)
	require.NoError(t, consumer.Handle(ctx, task.NewInstanceEvent(task.EventTypeTaskAttached, instance, "C1", "kyc")))
	require.NoError(t, instance.Execute(actor, ""))
	require.NoError(t, consumer.Handle(ctx, task.NewInstanceEvent(task.EventTypeTaskExecuted, instance, "C1", "kyc")))

	d, err := document.NewDocument(testutil.TestTenantID(), c.ID, "D1", "", actor)
	require.NoError(t, err)
	require.NoError(t, d.Complete(true, []int{0}, actor))
	require.NoError(t, consumer.Handle(ctx, d.GetDomainEvents()[1]))

	assert.Equal(t, []string{"ACTIVATE:PENDING->ACTIVE"}, rec.transitions)
	assert.Equal(t, []string{"kyc"}, rec.executed)
	assert.Equal(t, 1, rec.completed)
}

func TestLifecycleConsumer_RejectsUnknownEvents(t *testing.T) {
	err := NewLifecycleConsumer(&fakeRecorder{}, nil).Handle(context.Background(), testutil.NewSampleEvent("Other", uuid.New()))
	assert.Error(t, err)
}
