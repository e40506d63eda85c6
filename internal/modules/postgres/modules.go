package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/db"
	"signal_bot/pkg/logger"
)

// Module поднимает пул, только если журнал включён и DSN задан.
// Без DSN отдаёт nil, и журнал в alerts не подключается.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(lc fx.Lifecycle, cfg *config.Config) (*db.PgTxManager, error) {
				if !cfg.Journal.Enabled || cfg.Journal.DSN == "" {
					logger.Info("[DB] journal disabled")
					return nil, nil
				}

				poolMaster, err := db.NewPool(context.Background(), db.PoolConfig{
					DSN:            cfg.Journal.DSN,
					MaxConns:       cfg.Journal.MaxConns,
					ConnectTimeout: cfg.Journal.ConnectTimeout,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				tm := db.NewPgTxManager(poolMaster)
				lc.Append(fx.StopHook(tm.Close))
				return tm, nil
			},
		),
	)
}
