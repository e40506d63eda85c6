// Package exchange содержит адаптеры бирж: свечи, тикеры и отправка ордеров.
package exchange

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"signal_bot/internal/models"
)

// MarketData: источник свечей и тикеров для скана.
type MarketData interface {
	GetCandles(ctx context.Context, symbol, interval string, limit int) (models.CandleSeries, error)
	GetTickers(ctx context.Context) ([]models.Ticker, error)
}

// Options: общие настройки REST-клиентов.
type Options struct {
	APIKey     string
	APISecret  string
	Passphrase string
	BaseURL    string
	Testnet    bool
	RateLimit  float64 // запросов в секунду
	Burst      int
	Timeout    time.Duration
}

func (o Options) limiter() *rate.Limiter {
	rps := o.RateLimit
	if rps <= 0 {
		rps = 5
	}
	burst := o.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (o Options) httpClient() *http.Client {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
