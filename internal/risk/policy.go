// Package risk считает стоп, тейк и объём позиции для сигнала.
package risk

import (
	"fmt"
	"math"

	"signal_bot/internal/models"
)

// Policy задаёт уровни SL/TP для входа по цене entry.
// bars: свечи таймфрейма входа; последняя из них текущий бар.
type Policy interface {
	Name() string
	Levels(side models.Side, entry float64, bars []models.Candle) (stop, take float64, err error)
}

const (
	PolicySwing   = "swing"
	PolicyPercent = "percent"
)

// Swing ставит стоп за экстремум последних Lookback баров,
// тейк: RiskMultiple расстояний до стопа.
type Swing struct {
	Lookback       int
	IncludeCurrent bool
	RiskMultiple   float64
}

func (s Swing) Name() string { return PolicySwing }

func (s Swing) Levels(side models.Side, entry float64, bars []models.Candle) (float64, float64, error) {
	window := s.window(bars)
	if len(window) == 0 {
		return 0, 0, fmt.Errorf("swing window of %d bars: %w", s.Lookback, models.ErrInsufficientData)
	}

	var stop float64
	switch side {
	case models.SideBuy:
		stop = math.Inf(1)
		for _, c := range window {
			stop = math.Min(stop, c.Low)
		}
		if stop >= entry {
			return 0, 0, fmt.Errorf("%w: swing low %.8g not below entry %.8g", models.ErrInvalidStop, stop, entry)
		}
		return stop, entry + s.RiskMultiple*(entry-stop), nil
	case models.SideSell:
		stop = math.Inf(-1)
		for _, c := range window {
			stop = math.Max(stop, c.High)
		}
		if stop <= entry {
			return 0, 0, fmt.Errorf("%w: swing high %.8g not above entry %.8g", models.ErrInvalidStop, stop, entry)
		}
		return stop, entry - s.RiskMultiple*(stop-entry), nil
	}
	return 0, 0, fmt.Errorf("unknown side %q", side)
}

// window: последние Lookback баров; текущий бар исключается, если не сказано иное.
func (s Swing) window(bars []models.Candle) []models.Candle {
	end := len(bars)
	if !s.IncludeCurrent {
		end--
	}
	if end <= 0 || s.Lookback <= 0 {
		return nil
	}
	start := end - s.Lookback
	if start < 0 {
		start = 0
	}
	return bars[start:end]
}

// Percent: фиксированные отступы от входа в процентах (2 = 2%).
type Percent struct {
	StopPct float64
	TakePct float64
}

func (p Percent) Name() string { return PolicyPercent }

func (p Percent) Levels(side models.Side, entry float64, _ []models.Candle) (float64, float64, error) {
	stop := p.StopPct / 100
	take := p.TakePct / 100
	switch side {
	case models.SideBuy:
		return entry * (1 - stop), entry * (1 + take), nil
	case models.SideSell:
		return entry * (1 + stop), entry * (1 - take), nil
	}
	return 0, 0, fmt.Errorf("unknown side %q", side)
}
