package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"golang.org/x/time/rate"

	"signal_bot/internal/models"
)

// Binance: USDT-M фьючерсы через go-binance.
type Binance struct {
	client  *futures.Client
	limiter *rate.Limiter
}

func NewBinance(opts Options) *Binance {
	if opts.Testnet {
		futures.UseTestnet = true
	}
	client := futures.NewClient(opts.APIKey, opts.APISecret)
	client.HTTPClient = opts.httpClient()
	if opts.BaseURL != "" {
		client.BaseURL = opts.BaseURL
	}
	return &Binance{client: client, limiter: opts.limiter()}
}

func (b *Binance) GetCandles(ctx context.Context, symbol, interval string, limit int) (models.CandleSeries, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return models.CandleSeries{}, err
	}
	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return models.CandleSeries{}, fmt.Errorf("binance klines %s %s: %w", symbol, interval, err)
	}

	candles := make([]models.Candle, 0, len(klines))
	for _, k := range klines {
		c, err := parseKline(k)
		if err != nil {
			return models.CandleSeries{}, fmt.Errorf("binance kline %s %s: %w", symbol, interval, err)
		}
		candles = append(candles, c)
	}
	return models.NewCandleSeries(symbol, interval, candles)
}

func parseKline(k *futures.Kline) (models.Candle, error) {
	vals := make([]float64, 5)
	for i, s := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("parse %q: %w", s, err)
		}
		vals[i] = v
	}
	return models.Candle{
		Start:  time.UnixMilli(k.OpenTime).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func (b *Binance) GetTickers(ctx context.Context) ([]models.Ticker, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	stats, err := b.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance 24h tickers: %w", err)
	}

	out := make([]models.Ticker, 0, len(stats))
	for _, s := range stats {
		qv, err := strconv.ParseFloat(s.QuoteVolume, 64)
		if err != nil {
			continue
		}
		last, _ := strconv.ParseFloat(s.LastPrice, 64)
		out = append(out, models.Ticker{Symbol: s.Symbol, LastPrice: last, QuoteVolume: qv})
	}
	return out, nil
}
