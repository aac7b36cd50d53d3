package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/primabook/primabook/internal/eventsourcing"
	eventstoredomain "github.com/primabook/primabook/internal/eventstore/domain"
	"github.com/primabook/primabook/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Store eventstoredomain.Store
	Log   *zap.Logger
}

// Repository loads and saves Payment aggregates through the event store.
type Repository struct {
	inner *eventsourcing.Repository[*domain.Payment]
}

func New(p Params) *Repository {
	codec := eventsourcing.NewCodec()
	domain.RegisterEvents(codec)
	return &Repository{
		inner: eventsourcing.NewRepository(p.Store, codec, domain.Empty, p.Log),
	}
}

// GetByID replays the payment's event stream into a fresh aggregate.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	payment, err := r.inner.Load(ctx, id)
	if err != nil {
		if errors.Is(err, eventsourcing.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return payment, nil
}

// Save appends the payment's uncommitted events under its loaded version.
// A *ConcurrencyError propagates unchanged; the caller reloads and retries.
func (r *Repository) Save(ctx context.Context, payment *domain.Payment) error {
	return r.inner.Save(ctx, payment)
}
