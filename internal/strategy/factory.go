package strategy

import (
	"fmt"
	"strings"

	"signal_bot/internal/models"
)

// NewStrategy выбирает правило по имени из конфига.
func NewStrategy(cfg Config) (Strategy, error) {
	switch models.StrategyType(strings.ToLower(string(cfg.Rule))) {
	case models.StrategyCrossover:
		return Crossover{
			Overbought:    cfg.Overbought,
			Oversold:      cfg.Oversold,
			VolumeConfirm: cfg.VolumeConfirm,
		}, nil
	case models.StrategyReversal:
		return Reversal{
			Overbought:    cfg.Overbought,
			Oversold:      cfg.Oversold,
			VolumeConfirm: cfg.VolumeConfirm,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", models.ErrInvalidConfig, cfg.Rule)
}
