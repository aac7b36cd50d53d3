package eventsourcing

import (
	"context"
	"errors"
	"fmt"

	eventstoredomain "github.com/primabook/primabook/internal/eventstore/domain"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Load when the aggregate has no event stream.
var ErrNotFound = errors.New("eventsourcing: aggregate not found")

// Repository is the generic load/replay/save gateway over the event store.
// Load folds the stream into a fresh aggregate; Save appends the uncommitted
// events under the version the aggregate was loaded at.
type Repository[T Aggregate] struct {
	store         eventstoredomain.Store
	codec         *Codec
	newAggregate  func() T
	aggregateType string
	log           *zap.Logger
}

func NewRepository[T Aggregate](store eventstoredomain.Store, codec *Codec, newAggregate func() T, log *zap.Logger) *Repository[T] {
	zero := newAggregate()
	return &Repository[T]{
		store:         store,
		codec:         codec,
		newAggregate:  newAggregate,
		aggregateType: zero.AggregateType(),
		log:           log.Named("repository." + zero.AggregateType()),
	}
}

// Load replays the full stream into a fresh aggregate instance, one transition
// per event in stream order.
func (r *Repository[T]) Load(ctx context.Context, id string) (T, error) {
	var zero T

	records, err := r.store.Events(ctx, id, r.aggregateType, 0)
	if err != nil {
		return zero, err
	}
	if len(records) == 0 {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, r.aggregateType, id)
	}

	aggregate := r.newAggregate()
	for _, record := range records {
		event, err := r.codec.Decode(record.EventType, record.EventData)
		if err != nil {
			return zero, err
		}
		if err := aggregate.Apply(event); err != nil {
			return zero, fmt.Errorf("replay %s v%d: %w", record.EventType, record.Version, err)
		}
	}
	aggregate.SetVersion(records[len(records)-1].Version)
	return aggregate, nil
}

// Save appends the aggregate's uncommitted events at its loaded version. On
// success the version advances and the buffer clears; a ConcurrencyError from
// the store propagates unchanged so the caller can reload and retry.
func (r *Repository[T]) Save(ctx context.Context, aggregate T) error {
	pending := aggregate.UncommittedEvents()
	if len(pending) == 0 {
		return nil
	}

	batch := make([]eventstoredomain.EventData, 0, len(pending))
	for _, event := range pending {
		data, err := Encode(event)
		if err != nil {
			return err
		}
		batch = append(batch, eventstoredomain.EventData{Type: event.EventType(), Data: data})
	}

	newVersion, err := r.store.Append(ctx, aggregate.AggregateID(), r.aggregateType, batch, aggregate.Version())
	if err != nil {
		return err
	}

	aggregate.SetVersion(newVersion)
	aggregate.ClearUncommittedEvents()

	r.log.Debug("aggregate saved",
		zap.String("aggregate_id", aggregate.AggregateID()),
		zap.Int64("version", newVersion),
	)
	return nil
}
