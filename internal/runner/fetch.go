package runner

import (
	"context"
	"fmt"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

// fetchSeries тянет свечи с ретраем. Ошибка биржи и короткая серия
// одинаково считаются неудачной попыткой.
func (r *Runner) fetchSeries(ctx context.Context, symbol, interval string) (models.CandleSeries, error) {
	attempts := r.cfg.FetchRetry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	minBars := r.cfg.Scan.MinBars

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			r.metrics.FetchRetries.Inc()
			if err := r.sleep(ctx, r.cfg.FetchRetry.Backoff); err != nil {
				return models.CandleSeries{}, err
			}
		}

		s, err := r.market.GetCandles(ctx, symbol, interval, r.cfg.Scan.CandleLimit)
		switch {
		case err != nil:
			lastErr = err
		case s.Len() < minBars:
			lastErr = fmt.Errorf("%w: %d bars, need %d", models.ErrInsufficientData, s.Len(), minBars)
		default:
			return s, nil
		}

		if ctx.Err() != nil {
			return models.CandleSeries{}, ctx.Err()
		}
		logger.Debug("[FETCH] %s %s attempt %d/%d: %v", symbol, interval, attempt, attempts, lastErr)
	}
	return models.CandleSeries{}, fmt.Errorf("%s %s after %d attempts: %w", symbol, interval, attempts, lastErr)
}
