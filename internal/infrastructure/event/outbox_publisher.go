package event

import (
	"context"
	"fmt"

	"github.com/microfinance/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events to the outbox
type OutboxPublisher struct {
	serializer *EventSerializer
}

// NewOutboxPublisher creates an outbox publisher
func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// PublishWithTx stores events in the outbox using tx, so they commit or roll
// back together with the aggregate changes
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, e := range events {
		payload, err := p.serializer.Serialize(e)
		if err != nil {
			return fmt.Errorf("serialize %s: %w", e.EventType(), err)
		}
		entries = append(entries, shared.NewOutboxEntry(e, payload))
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// Bind returns an EventPublisher writing through tx
func (p *OutboxPublisher) Bind(tx *gorm.DB) shared.EventPublisher {
	return &txPublisher{publisher: p, tx: tx}
}

type txPublisher struct {
	publisher *OutboxPublisher
	tx        *gorm.DB
}

func (t *txPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return t.publisher.PublishWithTx(ctx, t.tx, events...)
}
