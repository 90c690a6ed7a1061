// Package events handles event emission for filter catalog and association changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Emitter publishes filter lifecycle events. A nil producer disables
// emission entirely; every Emit becomes a no-op.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitFiltersSynced emits an event after a property's filter associations are
// replaced
func (e *Emitter) EmitFiltersSynced(ctx context.Context, propertyID string, selection models.FilterSelection) error {
	if e.producer == nil {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitFiltersSynced")
	defer span.End()

	data, _ := json.Marshal(selection)
	event := &kafka.FilterEvent{
		EventType: "filters.synced",
		SubjectID: propertyID,
		Data:      data,
	}

	if err := e.producer.PublishFilterEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit filters.synced event")
		return err
	}

	return nil
}

// EmitGroupDeleted emits an event after a filter group and its values are
// cascade-deleted
func (e *Emitter) EmitGroupDeleted(ctx context.Context, groupID string, page string) error {
	if e.producer == nil {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitGroupDeleted")
	defer span.End()

	event := &kafka.FilterEvent{
		EventType: "group.deleted",
		SubjectID: groupID,
		Page:      page,
	}

	if err := e.producer.PublishFilterEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit group.deleted event")
		return err
	}

	return nil
}

// EmitValueDeleted emits an event after a filter value and its associations
// are deleted
func (e *Emitter) EmitValueDeleted(ctx context.Context, valueID string) error {
	if e.producer == nil {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitValueDeleted")
	defer span.End()

	event := &kafka.FilterEvent{
		EventType: "value.deleted",
		SubjectID: valueID,
	}

	if err := e.producer.PublishFilterEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit value.deleted event")
		return err
	}

	return nil
}

// EmitReordered emits an event after a bulk display-order write. kind is
// "groups" or "values".
func (e *Emitter) EmitReordered(ctx context.Context, kind string, ids []string) error {
	if e.producer == nil {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitReordered")
	defer span.End()

	data, _ := json.Marshal(ids)
	event := &kafka.FilterEvent{
		EventType: kind + ".reordered",
		SubjectID: kind,
		Data:      data,
	}

	if err := e.producer.PublishFilterEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit reorder event")
		return err
	}

	return nil
}
