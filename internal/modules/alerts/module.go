package alerts

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"signal_bot/internal/metrics"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/notify"
	"signal_bot/pkg/db"
	"signal_bot/pkg/logger"
)

type In struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	Metrics  *metrics.Metrics
	Tm       *db.PgTxManager `optional:"true"`
	Executor notify.Sink     `name:"executor" optional:"true"`
}

// New собирает каналы доставки. Журнал и исполнитель подключаются, только если они подняты.
func New(in In) (*notify.Fanout, error) {
	var sinks []notify.Sink

	if in.Cfg.Alerts.Stdout {
		sinks = append(sinks, notify.NewStdout())
	}

	if tg := in.Cfg.Alerts.Telegram; tg.Enabled {
		t, err := notify.NewTelegram(tg.Token, tg.ChatID)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, t)
	}

	if in.Tm != nil {
		j := notify.NewJournal(in.Tm)
		in.Lc.Append(fx.StartHook(func(ctx context.Context) error {
			if err := j.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("journal schema: %w", err)
			}
			return nil
		}))
		sinks = append(sinks, j)
	}

	if in.Executor != nil {
		sinks = append(sinks, in.Executor)
	}

	f := notify.NewFanout(in.Cfg.Alerts.Timeout, func(sink string) {
		in.Metrics.EmitFailures.WithLabelValues(sink).Inc()
	}, sinks...)
	logger.Info("[ALERT] sinks: %v", f.Sinks())
	return f, nil
}

func Module() fx.Option {
	return fx.Module("alerts",
		fx.Provide(New),
	)
}
