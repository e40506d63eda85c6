package indicator

import (
	"fmt"
	"math"

	"signal_bot/internal/models"
)

// HeikinAshi пересчитывает всю серию с первого бара; результат зависит
// от того, с какого бара начата выборка.
func HeikinAshi(series models.CandleSeries) ([]models.HeikinAshiCandle, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("heikin ashi %s %s: %w", series.Symbol, series.Interval, models.ErrInsufficientData)
	}

	out := make([]models.HeikinAshiCandle, series.Len())
	for i, c := range series.Candles {
		haClose := (c.Open + c.High + c.Low + c.Close) / 4
		var haOpen float64
		if i == 0 {
			haOpen = (c.Open + c.Close) / 2
		} else {
			haOpen = (out[i-1].Open + out[i-1].Close) / 2
		}
		out[i] = models.HeikinAshiCandle{
			Start: c.Start,
			Open:  haOpen,
			High:  math.Max(c.High, math.Max(haOpen, haClose)),
			Low:   math.Min(c.Low, math.Min(haOpen, haClose)),
			Close: haClose,
		}
	}
	return out, nil
}
