package booking

import (
	"github.com/primabook/primabook/internal/booking/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("booking.repository",
	fx.Provide(repository.New),
)
