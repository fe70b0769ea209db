// Package event holds the post-commit consumers of customer domain events.
package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/microfinance/backend/internal/domain/customer"
	"github.com/microfinance/backend/internal/domain/document"
	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/internal/domain/task"
	"go.uber.org/zap"
)

// TransitionRecorder records delivered lifecycle facts
type TransitionRecorder interface {
	RecordTransition(ctx context.Context, tenantID uuid.UUID, action, from, to string)
	RecordTaskExecuted(ctx context.Context, tenantID uuid.UUID, taskIdentifier string)
	RecordDocumentCompleted(ctx context.Context, tenantID uuid.UUID)
}

// LifecycleConsumer logs delivered lifecycle, task and document completion
// events and feeds them to the recorder. Delivery is at-least-once; wrap
// the consumer in an idempotent handler to drop redeliveries.
type LifecycleConsumer struct {
	recorder TransitionRecorder
	logger   *zap.Logger
}

// NewLifecycleConsumer creates a new LifecycleConsumer
func NewLifecycleConsumer(recorder TransitionRecorder, logger *zap.Logger) *LifecycleConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleConsumer{recorder: recorder, logger: logger}
}

// EventTypes implements shared.EventHandler
func (c *LifecycleConsumer) EventTypes() []string {
	types := append([]string{}, customer.LifecycleEventTypes...)
	return append(types,
		task.EventTypeTaskExecuted,
		document.EventTypeDocumentCompleted,
	)
}

// Handle implements shared.EventHandler
func (c *LifecycleConsumer) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *customer.LifecycleEvent:
		c.logger.Info("Customer lifecycle transition",
			zap.String("event_id", e.EventID().String()),
			zap.String("customer", e.Identifier),
			zap.String("action", string(e.Action)),
			zap.String("from", string(e.FromState)),
			zap.String("to", string(e.ToState)),
			zap.String("acted_by", e.ActedBy.String()))
		c.recorder.RecordTransition(ctx, e.TenantID(), string(e.Action), string(e.FromState), string(e.ToState))
	case *task.InstanceEvent:
		if e.EventType() != task.EventTypeTaskExecuted {
			return nil
		}
		c.logger.Info("Customer task executed",
			zap.String("event_id", e.EventID().String()),
			zap.String("customer", e.CustomerIdentifier),
			zap.String("task", e.TaskIdentifier))
		c.recorder.RecordTaskExecuted(ctx, e.TenantID(), e.TaskIdentifier)
	case *document.DocumentEvent:
		if e.EventType() != document.EventTypeDocumentCompleted {
			return nil
		}
		c.logger.Info("Document completed",
			zap.String("event_id", e.EventID().String()),
			zap.String("document", e.Identifier),
			zap.String("document_id", e.AggregateID().String()))
		c.recorder.RecordDocumentCompleted(ctx, e.TenantID())
	default:
		return fmt.Errorf("unexpected event %s (%T)", event.EventType(), event)
	}
	return nil
}

var _ shared.EventHandler = (*LifecycleConsumer)(nil)
