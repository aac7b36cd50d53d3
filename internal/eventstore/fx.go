package eventstore

import (
	"github.com/primabook/primabook/internal/eventstore/domain"
	"github.com/primabook/primabook/internal/eventstore/gormstore"
	"go.uber.org/fx"
)

var Module = fx.Module("eventstore",
	fx.Provide(
		gormstore.New,
		func(s *gormstore.Store) domain.Store { return s },
	),
)
