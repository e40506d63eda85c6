package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"signal_bot/internal/metrics"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"
)

// initLogger поднимает zap до остальных модулей.
func initLogger(lc fx.Lifecycle, cfg *config.Config) error {
	logger.SetServiceName(cfg.Service.Name)
	if err := logger.Init(cfg.Log.Level, cfg.Service.Name); err != nil {
		return err
	}
	if dump, err := cfg.Dump(); err == nil {
		logger.Debug("[CONFIG] effective:\n%s", dump)
	}
	lc.Append(fx.StopHook(logger.Sync))
	return nil
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	tracing.SetServiceName(cfg.Service.Name)
	_, closeFn, err := tracing.InitTracer(tracing.Config{
		Enabled:    cfg.Tracing.Enabled,
		Host:       cfg.Tracing.Host,
		Port:       cfg.Tracing.Port,
		SampleRate: cfg.Tracing.SampleRate,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.StopHook(func(context.Context) error {
		closeFn()
		return nil
	}))
	return nil
}

func Module() fx.Option {
	return fx.Module("telemetry",
		fx.Provide(
			prometheus.NewRegistry,
			func(reg *prometheus.Registry) *metrics.Metrics {
				return metrics.New(reg)
			},
		),
		fx.Invoke(initLogger, initTracing),
	)
}
