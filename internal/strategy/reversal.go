package strategy

import "signal_bot/internal/models"

// Reversal: выход RSI из зоны перепроданности/перекупленности,
// подтверждённый цветом HA-свечи и ростом объёма.
type Reversal struct {
	Overbought    float64
	Oversold      float64
	VolumeConfirm bool
}

func (r Reversal) Name() string { return string(models.StrategyReversal) }

func (r Reversal) Evaluate(latest, previous Bar) models.Side {
	if anyNaN(previous.RSI, latest.RSI, latest.HAOpen, latest.HAClose) {
		return models.SideNone
	}
	if r.VolumeConfirm {
		if anyNaN(previous.Volume, latest.Volume) || latest.Volume <= previous.Volume {
			return models.SideNone
		}
	}

	switch {
	case previous.RSI <= r.Oversold && latest.RSI > r.Oversold && latest.HABullish():
		return models.SideBuy
	case previous.RSI >= r.Overbought && latest.RSI < r.Overbought && latest.HABearish():
		return models.SideSell
	}
	return models.SideNone
}
