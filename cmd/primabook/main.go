package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/primabook/primabook/internal/availability"
	"github.com/primabook/primabook/internal/booking"
	"github.com/primabook/primabook/internal/cancellation"
	"github.com/primabook/primabook/internal/clock"
	"github.com/primabook/primabook/internal/config"
	"github.com/primabook/primabook/internal/eventstore"
	"github.com/primabook/primabook/internal/gateway"
	"github.com/primabook/primabook/internal/logger"
	"github.com/primabook/primabook/internal/migration"
	"github.com/primabook/primabook/internal/observability"
	"github.com/primabook/primabook/internal/payment"
	"github.com/primabook/primabook/internal/payout"
	"github.com/primabook/primabook/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		eventstore.Module,
		gateway.Module,
		payment.Module,
		payout.Module,
		booking.Module,
		availability.Module,
		cancellation.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
