package cancellation

import (
	cancellationservice "github.com/primabook/primabook/internal/cancellation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cancellation.service",
	fx.Provide(cancellationservice.New),
)
