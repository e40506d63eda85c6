package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"signal_bot/internal/models"
)

// CachingMarketData кэширует свечи в Redis на короткий TTL.
// Тикеры не кэшируются: ранжирование должно видеть свежий оборот.
// Ошибки Redis не ломают скан: идём в биржу напрямую.
type CachingMarketData struct {
	inner     MarketData
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	// hit | miss | error, для метрик
	observe func(result string)
}

func NewCachingMarketData(rdb *redis.Client, ttl time.Duration, inner MarketData, namespace string, observe func(string)) *CachingMarketData {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if namespace == "" {
		namespace = "candles"
	}
	if observe == nil {
		observe = func(string) {}
	}
	return &CachingMarketData{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		observe:   observe,
	}
}

func (c *CachingMarketData) GetTickers(ctx context.Context) ([]models.Ticker, error) {
	return c.inner.GetTickers(ctx)
}

func (c *CachingMarketData) GetCandles(ctx context.Context, symbol, interval string, limit int) (models.CandleSeries, error) {
	if c.rdb == nil {
		return c.inner.GetCandles(ctx, symbol, interval, limit)
	}

	key := c.cacheKey(symbol, interval, limit)

	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(b) > 0:
		var candles []models.Candle
		if err := sonic.Unmarshal(b, &candles); err == nil {
			if s, err := models.NewCandleSeries(symbol, interval, candles); err == nil {
				c.observe("hit")
				return s, nil
			}
		}
		// битая запись
		_ = c.rdb.Del(ctx, key).Err()
		c.observe("error")
	case errors.Is(err, redis.Nil):
		c.observe("miss")
	default:
		c.observe("error")
	}

	s, err := c.inner.GetCandles(ctx, symbol, interval, limit)
	if err != nil {
		return models.CandleSeries{}, err
	}
	if b, err := sonic.Marshal(s.Candles); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return s, nil
}

func (c *CachingMarketData) cacheKey(symbol, interval string, limit int) string {
	return fmt.Sprintf("%s:%s:%s:%d", c.namespace, safe(symbol), safe(interval), limit)
}

func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
