package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/primabook/primabook/internal/eventsourcing"
	eventstoredomain "github.com/primabook/primabook/internal/eventstore/domain"
	"github.com/primabook/primabook/internal/payout/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Store eventstoredomain.Store
	Log   *zap.Logger
}

// Repository loads and saves Payout aggregates through the event store.
type Repository struct {
	inner *eventsourcing.Repository[*domain.Payout]
}

func New(p Params) *Repository {
	codec := eventsourcing.NewCodec()
	domain.RegisterEvents(codec)
	return &Repository{
		inner: eventsourcing.NewRepository(p.Store, codec, domain.Empty, p.Log),
	}
}

// GetByID replays the payout's event stream into a fresh aggregate.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	payout, err := r.inner.Load(ctx, id)
	if err != nil {
		if errors.Is(err, eventsourcing.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return payout, nil
}

// Save appends the payout's uncommitted events under its loaded version.
func (r *Repository) Save(ctx context.Context, payout *domain.Payout) error {
	return r.inner.Save(ctx, payout)
}
