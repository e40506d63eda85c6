package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bar(min int, o, h, l, c, v float64) Candle {
	return Candle{
		Start:  time.Date(2024, 1, 1, 0, min, 0, 0, time.UTC),
		Open:   o,
		High:   h,
		Low:    l,
		Close:  c,
		Volume: v,
	}
}

func TestNewCandleSeries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		candles []Candle
		wantErr bool
	}{
		{name: "empty series is valid", candles: nil},
		{
			name: "ordered with gap",
			candles: []Candle{
				bar(0, 10, 11, 9, 10.5, 100),
				bar(5, 10.5, 12, 10, 11, 120),
			},
		},
		{
			name: "duplicate timestamp",
			candles: []Candle{
				bar(0, 10, 11, 9, 10.5, 100),
				bar(0, 10.5, 12, 10, 11, 120),
			},
			wantErr: true,
		},
		{
			name: "descending order",
			candles: []Candle{
				bar(5, 10, 11, 9, 10.5, 100),
				bar(0, 10.5, 12, 10, 11, 120),
			},
			wantErr: true,
		},
		{
			name:    "high below close",
			candles: []Candle{bar(0, 10, 10.2, 9, 10.5, 100)},
			wantErr: true,
		},
		{
			name:    "low above open",
			candles: []Candle{bar(0, 10, 11, 10.1, 10.5, 100)},
			wantErr: true,
		},
		{
			name:    "negative volume",
			candles: []Candle{bar(0, 10, 11, 9, 10.5, -1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := NewCandleSeries("BTCUSDT", "15m", tt.candles)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidCandle)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.candles), s.Len())
		})
	}
}

func TestCandleSeries_Accessors(t *testing.T) {
	t.Parallel()

	s, err := NewCandleSeries("ETHUSDT", "5m", []Candle{
		bar(0, 10, 11, 9, 10.5, 100),
		bar(5, 10.5, 12, 10, 11, 120),
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{10.5, 11}, s.Closes())
	assert.Equal(t, []float64{100, 120}, s.Volumes())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 11.0, last.Close)

	_, ok = CandleSeries{}.Last()
	assert.False(t, ok)
}

func TestSide_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NONE", SideNone.String())
	assert.Equal(t, "BUY", SideBuy.String())
	assert.Equal(t, SideSell, SideBuy.Opposite())
	assert.Equal(t, SideNone, SideNone.Opposite())
}
