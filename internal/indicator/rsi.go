package indicator

import (
	"fmt"
	"math"
	"strings"

	"signal_bot/internal/models"
)

// Smoothing: способ усреднения приростов/потерь в RSI.
type Smoothing string

const (
	SmoothingWilder Smoothing = "wilder"
	SmoothingSimple Smoothing = "simple"
)

// ParseSmoothing принимает имя из конфига; пустая строка: wilder.
func ParseSmoothing(name string) (Smoothing, error) {
	switch Smoothing(strings.ToLower(strings.TrimSpace(name))) {
	case "", SmoothingWilder:
		return SmoothingWilder, nil
	case SmoothingSimple:
		return SmoothingSimple, nil
	}
	return "", fmt.Errorf("%w: unknown rsi smoothing %q", models.ErrInvalidConfig, name)
}

// RSI по ценам закрытия. Значение на индексе i строится по изменениям,
// заканчивающимся на i, поэтому индексы < window не определены.
func RSI(closes []float64, window int, smoothing Smoothing) (Series, error) {
	if err := checkWindow(window); err != nil {
		return nil, err
	}
	if smoothing == "" {
		smoothing = SmoothingWilder
	}
	if smoothing != SmoothingWilder && smoothing != SmoothingSimple {
		return nil, fmt.Errorf("%w: unknown rsi smoothing %q", models.ErrInvalidConfig, smoothing)
	}

	out := undefined(len(closes))
	if len(closes) <= window {
		return out, nil
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		switch {
		case math.IsNaN(d):
			gains[i], losses[i] = math.NaN(), math.NaN()
		case d > 0:
			gains[i] = d
		default:
			losses[i] = -d
		}
	}

	if smoothing == SmoothingSimple {
		for i := window; i < len(closes); i++ {
			var g, l float64
			for j := i - window + 1; j <= i; j++ {
				g += gains[j]
				l += losses[j]
			}
			out[i] = rsiValue(g/float64(window), l/float64(window))
		}
		return out, nil
	}

	// wilder: затравка простым средним первых window изменений
	var avgGain, avgLoss float64
	for j := 1; j <= window; j++ {
		avgGain += gains[j]
		avgLoss += losses[j]
	}
	w := float64(window)
	avgGain /= w
	avgLoss /= w
	out[window] = rsiValue(avgGain, avgLoss)

	for i := window + 1; i < len(closes); i++ {
		avgGain = (avgGain*(w-1) + gains[i]) / w
		avgLoss = (avgLoss*(w-1) + losses[i]) / w
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if math.IsNaN(avgGain) || math.IsNaN(avgLoss) {
		return math.NaN()
	}
	if avgLoss == 0 {
		if avgGain > 0 {
			return 100
		}
		// нет движения вообще: направления нет
		return math.NaN()
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
