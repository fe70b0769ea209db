package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/customer"
	"go.opentelemetry.io/otel/metric"
)

// LifecycleMetrics counts lifecycle commands, gating decisions and the
// events seen by the lifecycle consumer.
type LifecycleMetrics struct {
	commandsAccepted  *Counter
	commandsRejected  *Counter
	transitions       *Counter
	duplicateTasks    *Counter
	tasksExecuted     *Counter
	documentsComplete *Counter
}

// NewLifecycleMetrics creates the instruments on meter
func NewLifecycleMetrics(meter metric.Meter) (*LifecycleMetrics, error) {
	var (
		m   LifecycleMetrics
		err error
	)
	if m.commandsAccepted, err = NewCounter(meter, "customer_lifecycle_commands_accepted_total",
		"Lifecycle commands accepted by the state machine", "{command}"); err != nil {
		return nil, err
	}
	if m.commandsRejected, err = NewCounter(meter, "customer_lifecycle_commands_rejected_total",
		"Lifecycle commands rejected, by error code", "{command}"); err != nil {
		return nil, err
	}
	if m.transitions, err = NewCounter(meter, "customer_lifecycle_transitions_total",
		"Committed customer state transitions", "{transition}"); err != nil {
		return nil, err
	}
	if m.duplicateTasks, err = NewCounter(meter, "customer_task_duplicate_instances_total",
		"Predefined tasks attached while an open instance already existed", "{task}"); err != nil {
		return nil, err
	}
	if m.tasksExecuted, err = NewCounter(meter, "customer_tasks_executed_total",
		"Executed customer task instances", "{task}"); err != nil {
		return nil, err
	}
	if m.documentsComplete, err = NewCounter(meter, "customer_documents_completed_total",
		"Documents marked complete", "{document}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// TransitionAccepted counts a command the state machine allowed
func (m *LifecycleMetrics) TransitionAccepted(ctx context.Context, tenantID uuid.UUID, action customer.Action) {
	m.commandsAccepted.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrAction.String(string(action)))
}

// TransitionRejected counts a refused command by error code
func (m *LifecycleMetrics) TransitionRejected(ctx context.Context, tenantID uuid.UUID, action customer.Action, code string) {
	m.commandsRejected.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrAction.String(string(action)),
		AttrErrorCode.String(code),
	)
}

// DuplicateTaskAttached counts a permissive duplicate attachment
func (m *LifecycleMetrics) DuplicateTaskAttached(ctx context.Context, tenantID uuid.UUID, taskIdentifier string) {
	m.duplicateTasks.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrTask.String(taskIdentifier))
}

// RecordTransition counts a committed transition delivered through the outbox
func (m *LifecycleMetrics) RecordTransition(ctx context.Context, tenantID uuid.UUID, action, from, to string) {
	m.transitions.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrAction.String(action),
		AttrFromState.String(from),
		AttrToState.String(to),
	)
}

// RecordTaskExecuted counts an executed task instance
func (m *LifecycleMetrics) RecordTaskExecuted(ctx context.Context, tenantID uuid.UUID, taskIdentifier string) {
	m.tasksExecuted.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrTask.String(taskIdentifier))
}

// RecordDocumentCompleted counts a completed document
func (m *LifecycleMetrics) RecordDocumentCompleted(ctx context.Context, tenantID uuid.UUID) {
	m.documentsComplete.Inc(ctx, AttrTenantID.String(tenantID.String()))
}
