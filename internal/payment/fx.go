package payment

import (
	"github.com/primabook/primabook/internal/payment/repository"
	paymentservice "github.com/primabook/primabook/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.New),
	fx.Provide(paymentservice.NewService),
)
