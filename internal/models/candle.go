package models

import (
	"fmt"
	"math"
	"time"
)

// Candle: одна OHLCV свеча. После получения с биржи не меняется.
type Candle struct {
	Start  time.Time `json:"start"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Validate проверяет high >= max(open,close) >= min(open,close) >= low и volume >= 0.
func (c Candle) Validate() error {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value at %s", ErrInvalidCandle, c.Start.Format(time.RFC3339))
		}
	}
	if c.Volume < 0 {
		return fmt.Errorf("%w: negative volume %.8f at %s", ErrInvalidCandle, c.Volume, c.Start.Format(time.RFC3339))
	}
	hi := math.Max(c.Open, c.Close)
	lo := math.Min(c.Open, c.Close)
	if c.High < hi || c.Low > lo {
		return fmt.Errorf("%w: o=%.8f h=%.8f l=%.8f c=%.8f at %s",
			ErrInvalidCandle, c.Open, c.High, c.Low, c.Close, c.Start.Format(time.RFC3339))
	}
	return nil
}

// CandleSeries: свечи одного символа и таймфрейма, строго по возрастанию времени.
type CandleSeries struct {
	Symbol   string
	Interval string
	Candles  []Candle
}

// NewCandleSeries собирает серию и проверяет порядок и OHLC-инварианты.
// Пропуски между свечами допустимы, дубли и обратный порядок: нет.
func NewCandleSeries(symbol, interval string, candles []Candle) (CandleSeries, error) {
	for i, c := range candles {
		if err := c.Validate(); err != nil {
			return CandleSeries{}, fmt.Errorf("%s %s bar %d: %w", symbol, interval, i, err)
		}
		if i > 0 && !c.Start.After(candles[i-1].Start) {
			return CandleSeries{}, fmt.Errorf("%w: %s %s bar %d at %s is not after %s",
				ErrInvalidCandle, symbol, interval, i,
				c.Start.Format(time.RFC3339), candles[i-1].Start.Format(time.RFC3339))
		}
	}
	return CandleSeries{Symbol: symbol, Interval: interval, Candles: candles}, nil
}

func (s CandleSeries) Len() int { return len(s.Candles) }

// Last возвращает последнюю свечу; ok=false для пустой серии.
func (s CandleSeries) Last() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

func (s CandleSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

func (s CandleSeries) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}

// HeikinAshiCandle: сглаженная свеча, производная от Candle с тем же Start.
type HeikinAshiCandle struct {
	Start time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Bullish: зелёная HA-свеча.
func (h HeikinAshiCandle) Bullish() bool { return h.Close > h.Open }

// Bearish: красная HA-свеча.
func (h HeikinAshiCandle) Bearish() bool { return h.Close < h.Open }
