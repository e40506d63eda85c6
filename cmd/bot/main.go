package main

import (
	"go.uber.org/fx"

	"signal_bot/internal/modules/alerts"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/market"
	"signal_bot/internal/modules/postgres"
	"signal_bot/internal/modules/telemetry"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"
)

func main() {
	app := fx.New(
		config.Module(),
		telemetry.Module(),
		postgres.Module(),
		market.Module(),
		alerts.Module(),
		health.Module(),
		runner.Module(),
	)
	if err := app.Err(); err != nil {
		logger.Fatal("[APP] build failed: %v", err)
	}
	app.Run()
}
