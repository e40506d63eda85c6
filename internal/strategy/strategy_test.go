package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
)

type ohlcv struct{ o, h, l, c, v float64 }

func makeSeries(t *testing.T, interval string, rows []ohlcv) models.CandleSeries {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(rows))
	for i, r := range rows {
		candles[i] = models.Candle{
			Start: start.Add(time.Duration(i) * time.Hour),
			Open:  r.o, High: r.h, Low: r.l, Close: r.c, Volume: r.v,
		}
	}
	s, err := models.NewCandleSeries("BTCUSDT", interval, candles)
	require.NoError(t, err)
	return s
}

// зеркалим цены вокруг 30: RSI -> 100-RSI, бычьи HA-свечи становятся медвежьими
func mirror(rows []ohlcv) []ohlcv {
	out := make([]ohlcv, len(rows))
	for i, r := range rows {
		out[i] = ohlcv{o: 30 - r.o, h: 30 - r.l, l: 30 - r.h, c: 30 - r.c, v: r.v}
	}
	return out
}

// падение с выходом RSI из перепроданности на последнем баре
var reversalRows = []ohlcv{
	{12.2, 12.3, 11.9, 12, 100},
	{12, 12.1, 10.9, 11, 100},
	{11, 11.1, 9.9, 10, 100},
	{10, 10.1, 8.9, 9, 100},
	{9, 9.1, 8.4, 8.5, 100},
	{8.5, 11.1, 8.4, 11, 150},
}

func reversalConfig() Config {
	return Config{
		Rule:          models.StrategyReversal,
		TrendLine:     TrendEMA,
		FastWindow:    2,
		SlowWindow:    3,
		RSIWindow:     3,
		Smoothing:     "simple",
		VolumeWindow:  3,
		Overbought:    70,
		Oversold:      30,
		VolumeConfirm: true,
	}
}

func TestEngineReversalBuy(t *testing.T) {
	t.Parallel()
	eng, err := NewEngine(reversalConfig())
	require.NoError(t, err)
	assert.Equal(t, "reversal", eng.Name())

	series := makeSeries(t, "4h", reversalRows)
	bars, err := eng.Bars(series)
	require.NoError(t, err)
	require.Len(t, bars, 6)
	assert.InDelta(t, 0, bars[4].RSI, 1e-9)
	assert.InDelta(t, 62.5, bars[5].RSI, 1e-9)
	assert.InDelta(t, 9.5375, bars[5].HAOpen, 1e-9)
	assert.InDelta(t, 9.75, bars[5].HAClose, 1e-9)

	side, err := eng.Evaluate(series)
	require.NoError(t, err)
	assert.Equal(t, models.SideBuy, side)

	sell, err := eng.Evaluate(makeSeries(t, "4h", mirror(reversalRows)))
	require.NoError(t, err)
	assert.Equal(t, models.SideSell, sell)
}

func TestEngineReversalNeedsRisingVolume(t *testing.T) {
	t.Parallel()
	rows := append([]ohlcv(nil), reversalRows...)
	rows[5].v = 90

	eng, err := NewEngine(reversalConfig())
	require.NoError(t, err)
	side, err := eng.Evaluate(makeSeries(t, "4h", rows))
	require.NoError(t, err)
	assert.Equal(t, models.SideNone, side)

	cfg := reversalConfig()
	cfg.VolumeConfirm = false
	eng, err = NewEngine(cfg)
	require.NoError(t, err)
	side, err = eng.Evaluate(makeSeries(t, "4h", rows))
	require.NoError(t, err)
	assert.Equal(t, models.SideBuy, side)
}

func TestEngineFlatSeriesIsNone(t *testing.T) {
	t.Parallel()
	rows := make([]ohlcv, 30)
	for i := range rows {
		rows[i] = ohlcv{10, 10, 10, 10, 100}
	}
	for _, rule := range []models.StrategyType{models.StrategyReversal, models.StrategyCrossover} {
		cfg := reversalConfig()
		cfg.Rule = rule
		cfg.VolumeConfirm = false
		eng, err := NewEngine(cfg)
		require.NoError(t, err)

		bars, err := eng.Bars(makeSeries(t, "1h", rows))
		require.NoError(t, err)
		assert.True(t, math.IsNaN(bars[len(bars)-1].RSI))

		side, err := eng.Evaluate(makeSeries(t, "1h", rows))
		require.NoError(t, err)
		assert.Equal(t, models.SideNone, side, rule)
	}
}

func TestEngineShortSeries(t *testing.T) {
	t.Parallel()
	eng, err := NewEngine(reversalConfig())
	require.NoError(t, err)

	side, err := eng.Evaluate(models.CandleSeries{Symbol: "BTCUSDT", Interval: "1h"})
	require.NoError(t, err)
	assert.Equal(t, models.SideNone, side)

	side, err = eng.Evaluate(makeSeries(t, "1h", reversalRows[:1]))
	require.NoError(t, err)
	assert.Equal(t, models.SideNone, side)

	// два бара: индикаторы ещё не прогреты
	side, err = eng.Evaluate(makeSeries(t, "1h", reversalRows[:2]))
	require.NoError(t, err)
	assert.Equal(t, models.SideNone, side)
}

func TestEngineCrossover(t *testing.T) {
	t.Parallel()
	rows := []ohlcv{
		{5, 5.5, 4.5, 5, 10},
		{4, 4.5, 3.5, 4, 10},
		{3, 3.5, 2.5, 3, 10},
		{2, 2.5, 1.5, 2, 10},
		{1, 1.5, 0.5, 1, 10},
		{6, 6.5, 5.5, 6, 40},
	}
	cfg := Config{
		Rule:          models.StrategyCrossover,
		TrendLine:     TrendSMA,
		FastWindow:    2,
		SlowWindow:    3,
		RSIWindow:     3,
		Smoothing:     "wilder",
		VolumeWindow:  3,
		Overbought:    80,
		Oversold:      20,
		VolumeConfirm: true,
	}
	eng, err := NewEngine(cfg)
	require.NoError(t, err)

	bars, err := eng.Bars(makeSeries(t, "1h", rows))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, bars[4].FastMA, 1e-9)
	assert.InDelta(t, 2, bars[4].SlowMA, 1e-9)
	assert.InDelta(t, 3.5, bars[5].FastMA, 1e-9)
	assert.InDelta(t, 3, bars[5].SlowMA, 1e-9)
	assert.InDelta(t, 100-100/3.5, bars[5].RSI, 1e-9)
	assert.InDelta(t, 20, bars[5].VolumeMean, 1e-9)

	side, err := eng.Evaluate(makeSeries(t, "1h", rows))
	require.NoError(t, err)
	assert.Equal(t, models.SideBuy, side)

	// RSI ~71.4 выше порога перекупленности
	cfg.Overbought = 70
	eng, err = NewEngine(cfg)
	require.NoError(t, err)
	side, err = eng.Evaluate(makeSeries(t, "1h", rows))
	require.NoError(t, err)
	assert.Equal(t, models.SideNone, side)
}

func TestCrossoverRule(t *testing.T) {
	t.Parallel()
	rule := Crossover{Overbought: 70, Oversold: 30, VolumeConfirm: true}
	nan := math.NaN()

	tests := []struct {
		name     string
		previous Bar
		latest   Bar
		want     models.Side
	}{
		{
			name:     "cross up",
			previous: Bar{FastMA: 9, SlowMA: 10},
			latest:   Bar{FastMA: 11, SlowMA: 10, RSI: 55, Volume: 200, VolumeMean: 100},
			want:     models.SideBuy,
		},
		{
			name:     "touch then cross up",
			previous: Bar{FastMA: 10, SlowMA: 10},
			latest:   Bar{FastMA: 11, SlowMA: 10, RSI: 55, Volume: 200, VolumeMean: 100},
			want:     models.SideBuy,
		},
		{
			name:     "cross up but overbought",
			previous: Bar{FastMA: 9, SlowMA: 10},
			latest:   Bar{FastMA: 11, SlowMA: 10, RSI: 75, Volume: 200, VolumeMean: 100},
			want:     models.SideNone,
		},
		{
			name:     "cross up on thin volume",
			previous: Bar{FastMA: 9, SlowMA: 10},
			latest:   Bar{FastMA: 11, SlowMA: 10, RSI: 55, Volume: 100, VolumeMean: 100},
			want:     models.SideNone,
		},
		{
			name:     "cross down",
			previous: Bar{FastMA: 11, SlowMA: 10},
			latest:   Bar{FastMA: 9, SlowMA: 10, RSI: 45, Volume: 200, VolumeMean: 100},
			want:     models.SideSell,
		},
		{
			name:     "cross down but oversold",
			previous: Bar{FastMA: 11, SlowMA: 10},
			latest:   Bar{FastMA: 9, SlowMA: 10, RSI: 25, Volume: 200, VolumeMean: 100},
			want:     models.SideNone,
		},
		{
			name:     "already above",
			previous: Bar{FastMA: 11, SlowMA: 10},
			latest:   Bar{FastMA: 12, SlowMA: 10, RSI: 55, Volume: 200, VolumeMean: 100},
			want:     models.SideNone,
		},
		{
			name:     "undefined slow line",
			previous: Bar{FastMA: 9, SlowMA: nan},
			latest:   Bar{FastMA: 11, SlowMA: 10, RSI: 55, Volume: 200, VolumeMean: 100},
			want:     models.SideNone,
		},
		{
			name:     "undefined rsi",
			previous: Bar{FastMA: 9, SlowMA: 10},
			latest:   Bar{FastMA: 11, SlowMA: 10, RSI: nan, Volume: 200, VolumeMean: 100},
			want:     models.SideNone,
		},
		{
			name:     "undefined volume mean",
			previous: Bar{FastMA: 9, SlowMA: 10},
			latest:   Bar{FastMA: 11, SlowMA: 10, RSI: 55, Volume: 200, VolumeMean: nan},
			want:     models.SideNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, rule.Evaluate(tt.latest, tt.previous))
		})
	}
}

func TestCrossoverExclusive(t *testing.T) {
	t.Parallel()
	rule := Crossover{Overbought: 100, Oversold: 0}
	levels := []float64{8, 9, 10, 11, 12}
	for _, pf := range levels {
		for _, ps := range levels {
			for _, lf := range levels {
				for _, ls := range levels {
					prev := Bar{FastMA: pf, SlowMA: ps}
					latest := Bar{FastMA: lf, SlowMA: ls, RSI: 50}
					switch rule.Evaluate(latest, prev) {
					case models.SideBuy:
						assert.True(t, pf <= ps && lf > ls)
					case models.SideSell:
						assert.True(t, pf >= ps && lf < ls)
					}
				}
			}
		}
	}
}

func TestReversalRule(t *testing.T) {
	t.Parallel()
	rule := Reversal{Overbought: 70, Oversold: 30, VolumeConfirm: true}

	tests := []struct {
		name     string
		previous Bar
		latest   Bar
		want     models.Side
	}{
		{
			name:     "leaves oversold on green bar",
			previous: Bar{RSI: 28, Volume: 100},
			latest:   Bar{RSI: 35, Volume: 120, HAOpen: 10, HAClose: 11},
			want:     models.SideBuy,
		},
		{
			name:     "from exactly oversold",
			previous: Bar{RSI: 30, Volume: 100},
			latest:   Bar{RSI: 31, Volume: 120, HAOpen: 10, HAClose: 11},
			want:     models.SideBuy,
		},
		{
			name:     "red bar vetoes buy",
			previous: Bar{RSI: 28, Volume: 100},
			latest:   Bar{RSI: 35, Volume: 120, HAOpen: 11, HAClose: 10},
			want:     models.SideNone,
		},
		{
			name:     "falling volume vetoes buy",
			previous: Bar{RSI: 28, Volume: 100},
			latest:   Bar{RSI: 35, Volume: 90, HAOpen: 10, HAClose: 11},
			want:     models.SideNone,
		},
		{
			name:     "leaves overbought on red bar",
			previous: Bar{RSI: 75, Volume: 100},
			latest:   Bar{RSI: 65, Volume: 120, HAOpen: 11, HAClose: 10},
			want:     models.SideSell,
		},
		{
			name:     "still overbought",
			previous: Bar{RSI: 80, Volume: 100},
			latest:   Bar{RSI: 72, Volume: 120, HAOpen: 11, HAClose: 10},
			want:     models.SideNone,
		},
		{
			name:     "undefined previous rsi",
			previous: Bar{RSI: math.NaN(), Volume: 100},
			latest:   Bar{RSI: 35, Volume: 120, HAOpen: 10, HAClose: 11},
			want:     models.SideNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, rule.Evaluate(tt.latest, tt.previous))
		})
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()
	buy, sell, none := models.SideBuy, models.SideSell, models.SideNone

	tests := []struct {
		name  string
		sides []models.Side
		want  models.Side
	}{
		{name: "all buy", sides: []models.Side{buy, buy, buy}, want: buy},
		{name: "all sell", sides: []models.Side{sell, sell}, want: sell},
		{name: "one disagrees", sides: []models.Side{buy, buy, sell}, want: none},
		{name: "one none", sides: []models.Side{buy, none, buy}, want: none},
		{name: "all none", sides: []models.Side{none, none}, want: none},
		{name: "single", sides: []models.Side{sell}, want: sell},
		{name: "empty", want: none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Confirm(tt.sides...))
		})
	}
}

func TestDecideVetoesDisagreement(t *testing.T) {
	t.Parallel()
	eng, err := NewEngine(reversalConfig())
	require.NoError(t, err)

	h4 := makeSeries(t, "4h", reversalRows)
	m15 := makeSeries(t, "15m", reversalRows)
	m5 := makeSeries(t, "5m", mirror(reversalRows))

	side, err := eng.Decide([]models.CandleSeries{h4, m15, m5})
	require.NoError(t, err)
	assert.Equal(t, models.SideNone, side)

	side, err = eng.Decide([]models.CandleSeries{h4, m15})
	require.NoError(t, err)
	assert.Equal(t, models.SideBuy, side)

	side, err = eng.Decide(nil)
	require.NoError(t, err)
	assert.Equal(t, models.SideNone, side)
}

func TestNewEngineValidation(t *testing.T) {
	t.Parallel()
	mutate := []struct {
		name string
		fn   func(*Config)
	}{
		{"zero rsi window", func(c *Config) { c.RSIWindow = 0 }},
		{"fast not below slow", func(c *Config) { c.FastWindow = 3 }},
		{"thresholds inverted", func(c *Config) { c.Oversold = 80 }},
		{"unknown trend line", func(c *Config) { c.TrendLine = "wma" }},
		{"unknown smoothing", func(c *Config) { c.Smoothing = "hull" }},
		{"unknown rule", func(c *Config) { c.Rule = "martingale" }},
	}
	for _, m := range mutate {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			cfg := reversalConfig()
			m.fn(&cfg)
			_, err := NewEngine(cfg)
			assert.ErrorIs(t, err, models.ErrInvalidConfig)
		})
	}
}
