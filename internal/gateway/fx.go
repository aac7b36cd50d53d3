package gateway

import (
	"github.com/primabook/primabook/internal/config"
	"github.com/primabook/primabook/internal/gateway/domain"
	"github.com/primabook/primabook/internal/gateway/stripe"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("gateway",
	fx.Provide(func(cfg config.Config, log *zap.Logger) domain.PaymentGateway {
		return stripe.New(cfg.StripeAPIKey, log)
	}),
)
