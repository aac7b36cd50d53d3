package payout

import (
	"github.com/primabook/primabook/internal/payout/repository"
	payoutservice "github.com/primabook/primabook/internal/payout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payout.service",
	fx.Provide(repository.New),
	fx.Provide(payoutservice.NewService),
)
