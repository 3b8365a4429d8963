package event

import (
	"context"
	"fmt"

	"github.com/locallift/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher turns domain events into outbox rows written inside
// the caller's transaction. Repositories hold it behind the
// shared.OutboxEventSaver interface.
type OutboxPublisher struct {
	serializer *EventSerializer
}

// NewOutboxPublisher creates a publisher using the given serializer.
func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// PublishWithTx serializes the events and inserts their outbox rows in
// tx. Either the aggregate change and its events all commit, or none do.
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, ev := range events {
		payload, err := p.serializer.Serialize(ev)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(ev, payload))
	}
	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// SaveEvents implements shared.OutboxEventSaver; txProvider must be the
// open *gorm.DB transaction.
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
	}
	return p.PublishWithTx(ctx, tx, events...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
