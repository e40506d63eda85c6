package strategy

import (
	"math"

	"signal_bot/internal/models"
)

// Crossover: пересечение быстрой и медленной линии с фильтром RSI и объёма.
type Crossover struct {
	Overbought    float64
	Oversold      float64
	VolumeConfirm bool
}

func (c Crossover) Name() string { return string(models.StrategyCrossover) }

func (c Crossover) Evaluate(latest, previous Bar) models.Side {
	if anyNaN(previous.FastMA, previous.SlowMA, latest.FastMA, latest.SlowMA, latest.RSI) {
		return models.SideNone
	}
	volumeOK := true
	if c.VolumeConfirm {
		if anyNaN(latest.Volume, latest.VolumeMean) {
			return models.SideNone
		}
		volumeOK = latest.Volume > latest.VolumeMean
	}
	if !volumeOK {
		return models.SideNone
	}

	crossedUp := previous.FastMA <= previous.SlowMA && latest.FastMA > latest.SlowMA
	crossedDown := previous.FastMA >= previous.SlowMA && latest.FastMA < latest.SlowMA

	// оба условия одновременно невозможны: latest.fast > slow и < slow взаимоисключающие
	switch {
	case crossedUp && latest.RSI < c.Overbought:
		return models.SideBuy
	case crossedDown && latest.RSI > c.Oversold:
		return models.SideSell
	}
	return models.SideNone
}

func anyNaN(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
