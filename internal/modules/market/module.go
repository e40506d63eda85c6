package market

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"signal_bot/internal/exchange"
	"signal_bot/internal/metrics"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/notify"
	"signal_bot/pkg/logger"
)

type Out struct {
	fx.Out

	Market exchange.MarketData
	// nil, если отправка ордеров выключена
	Executor notify.Sink `name:"executor"`
}

func options(cfg *config.Config) exchange.Options {
	return exchange.Options{
		APIKey:     cfg.Exchange.APIKey,
		APISecret:  cfg.Exchange.APISecret,
		Passphrase: cfg.Exchange.Passphrase,
		BaseURL:    cfg.Exchange.BaseURL,
		Testnet:    cfg.Exchange.Testnet,
		RateLimit:  cfg.Exchange.RateLimit,
		Burst:      cfg.Exchange.Burst,
		Timeout:    cfg.Exchange.Timeout,
	}
}

// New собирает адаптер биржи, исполнителя ордеров и, если включён, Redis-кэш свечей.
func New(lc fx.Lifecycle, cfg *config.Config, m *metrics.Metrics) (Out, error) {
	var (
		md       exchange.MarketData
		executor notify.Sink
	)

	switch cfg.Exchange.Name {
	case "okx":
		c := exchange.NewOKX(options(cfg))
		md = c
		if cfg.Execution.Enabled {
			executor = exchange.NewOKXExecutor(c, cfg.Risk.Leverage, cfg.Execution.MarginMode)
		}
	case "binance":
		c := exchange.NewBinance(options(cfg))
		md = c
		if cfg.Execution.Enabled {
			executor = exchange.NewBinanceExecutor(c, cfg.Risk.Leverage, cfg.Execution.MarginMode)
		}
	default:
		return Out{}, fmt.Errorf("unknown exchange %q", cfg.Exchange.Name)
	}
	logger.Info("[MARKET] %s (testnet=%t, execution=%t)", cfg.Exchange.Name, cfg.Exchange.Testnet, cfg.Execution.Enabled)

	if cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				// Redis недоступен: не фатально, кэш просто промахивается
				if err := rdb.Ping(ctx).Err(); err != nil {
					logger.Warn("[CACHE] redis %s unavailable: %v", cfg.Cache.Addr, err)
				}
				return nil
			},
			OnStop: func(context.Context) error {
				return rdb.Close()
			},
		})
		md = exchange.NewCachingMarketData(rdb, cfg.Cache.TTL, md, cfg.Cache.Namespace, func(result string) {
			m.CandleCacheHits.WithLabelValues(result).Inc()
		})
		logger.Info("[CACHE] candles cached in redis %s for %s", cfg.Cache.Addr, cfg.Cache.TTL)
	}

	return Out{Market: md, Executor: executor}, nil
}

func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(New),
	)
}
