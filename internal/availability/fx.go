package availability

import (
	"github.com/primabook/primabook/internal/availability/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("availability.repository",
	fx.Provide(repository.New),
)
