// Package strategy превращает серию свечей в направление сделки.
package strategy

import (
	"time"

	"signal_bot/internal/models"
)

// Bar: все значения, которые правила читают для одного индекса серии.
type Bar struct {
	Start  time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	HAOpen  float64
	HAClose float64

	FastMA     float64
	SlowMA     float64
	RSI        float64
	VolumeMean float64
}

// HABullish: зелёная HA-свеча.
func (b Bar) HABullish() bool { return b.HAClose > b.HAOpen }

// HABearish: красная HA-свеча.
func (b Bar) HABearish() bool { return b.HAClose < b.HAOpen }

// Strategy: правило, которое по двум последним барам отвечает BUY/SELL/NONE.
// Реализации без состояния.
type Strategy interface {
	Name() string
	Evaluate(latest, previous Bar) models.Side
}

// Config: параметры движка, собираются из секции strategy конфига.
type Config struct {
	Rule          models.StrategyType
	TrendLine     TrendLine
	FastWindow    int
	SlowWindow    int
	RSIWindow     int
	Smoothing     string
	VolumeWindow  int
	Overbought    float64
	Oversold      float64
	VolumeConfirm bool
}

// TrendLine: чем строить быструю/медленную линии.
type TrendLine string

const (
	TrendEMA TrendLine = "ema"
	TrendSMA TrendLine = "sma"
)
