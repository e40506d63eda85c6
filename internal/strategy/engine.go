package strategy

import (
	"fmt"

	"signal_bot/internal/indicator"
	"signal_bot/internal/models"
)

// Engine считает индикаторы по серии и отдаёт последние два бара правилу.
type Engine struct {
	cfg       Config
	smoothing indicator.Smoothing
	strategy  Strategy
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.FastWindow <= 0 || cfg.SlowWindow <= 0 || cfg.RSIWindow <= 0 || cfg.VolumeWindow <= 0 {
		return nil, fmt.Errorf("%w: windows must be > 0 (fast=%d slow=%d rsi=%d volume=%d)",
			models.ErrInvalidConfig, cfg.FastWindow, cfg.SlowWindow, cfg.RSIWindow, cfg.VolumeWindow)
	}
	if cfg.FastWindow >= cfg.SlowWindow {
		return nil, fmt.Errorf("%w: fast window %d must be below slow window %d",
			models.ErrInvalidConfig, cfg.FastWindow, cfg.SlowWindow)
	}
	if cfg.Oversold >= cfg.Overbought {
		return nil, fmt.Errorf("%w: oversold %.2f must be below overbought %.2f",
			models.ErrInvalidConfig, cfg.Oversold, cfg.Overbought)
	}
	switch cfg.TrendLine {
	case "":
		cfg.TrendLine = TrendEMA
	case TrendEMA, TrendSMA:
	default:
		return nil, fmt.Errorf("%w: unknown trend line %q", models.ErrInvalidConfig, cfg.TrendLine)
	}
	smoothing, err := indicator.ParseSmoothing(cfg.Smoothing)
	if err != nil {
		return nil, err
	}
	st, err := NewStrategy(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, smoothing: smoothing, strategy: st}, nil
}

// Name: имя правила, которым engine принимает решения.
func (e *Engine) Name() string { return e.strategy.Name() }

// Bars строит кадры индикаторов для каждого бара серии.
func (e *Engine) Bars(series models.CandleSeries) ([]Bar, error) {
	ha, err := indicator.HeikinAshi(series)
	if err != nil {
		return nil, err
	}
	closes := series.Closes()
	volumes := series.Volumes()

	fast, err := e.trend(closes, e.cfg.FastWindow)
	if err != nil {
		return nil, err
	}
	slow, err := e.trend(closes, e.cfg.SlowWindow)
	if err != nil {
		return nil, err
	}
	rsi, err := indicator.RSI(closes, e.cfg.RSIWindow, e.smoothing)
	if err != nil {
		return nil, err
	}
	volMean, err := indicator.RollingMean(volumes, e.cfg.VolumeWindow)
	if err != nil {
		return nil, err
	}

	bars := make([]Bar, series.Len())
	for i, c := range series.Candles {
		bars[i] = Bar{
			Start:      c.Start,
			Open:       c.Open,
			High:       c.High,
			Low:        c.Low,
			Close:      c.Close,
			Volume:     c.Volume,
			HAOpen:     ha[i].Open,
			HAClose:    ha[i].Close,
			FastMA:     fast[i],
			SlowMA:     slow[i],
			RSI:        rsi[i],
			VolumeMean: volMean[i],
		}
	}
	return bars, nil
}

func (e *Engine) trend(values []float64, window int) (indicator.Series, error) {
	if e.cfg.TrendLine == TrendSMA {
		return indicator.SMA(values, window)
	}
	return indicator.EMA(values, window)
}

// Evaluate: решение по одному таймфрейму. Меньше двух баров: NONE без ошибки.
func (e *Engine) Evaluate(series models.CandleSeries) (models.Side, error) {
	if series.Len() < 2 {
		return models.SideNone, nil
	}
	bars, err := e.Bars(series)
	if err != nil {
		return models.SideNone, fmt.Errorf("evaluate %s %s: %w", series.Symbol, series.Interval, err)
	}
	n := len(bars)
	return e.strategy.Evaluate(bars[n-1], bars[n-2]), nil
}

// Decide проверяет таймфреймы в заданном порядке; первый NONE обрывает проверку.
func (e *Engine) Decide(frames []models.CandleSeries) (models.Side, error) {
	sides := make([]models.Side, 0, len(frames))
	for _, f := range frames {
		side, err := e.Evaluate(f)
		if err != nil {
			return models.SideNone, err
		}
		if side == models.SideNone {
			return models.SideNone, nil
		}
		sides = append(sides, side)
	}
	return Confirm(sides...), nil
}
