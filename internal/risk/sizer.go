package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"signal_bot/internal/models"
)

// Config: секция risk конфига.
type Config struct {
	Policy              string
	SwingLookback       int
	SwingIncludeCurrent bool
	RiskMultiple        float64
	StopPct             float64
	TakePct             float64
	Notional            float64
	Leverage            float64
	QtyPrecision        int32
	PricePrecision      int32
}

// Plan: готовые к отправке уровни. RawQuantity: объём до округления.
type Plan struct {
	Side        models.Side
	Entry       float64
	StopLoss    float64
	TakeProfit  float64
	Quantity    float64
	RawQuantity float64
	Policy      string
}

type Sizer struct {
	policy         Policy
	notional       float64
	leverage       float64
	qtyPrecision   int32
	pricePrecision int32
}

func NewSizer(cfg Config) (*Sizer, error) {
	if cfg.Notional <= 0 || cfg.Leverage <= 0 {
		return nil, fmt.Errorf("%w: notional %.8g and leverage %.8g must be > 0",
			models.ErrInvalidConfig, cfg.Notional, cfg.Leverage)
	}
	if cfg.QtyPrecision < 0 || cfg.PricePrecision < 0 {
		return nil, fmt.Errorf("%w: negative precision", models.ErrInvalidConfig)
	}

	var p Policy
	switch strings.ToLower(cfg.Policy) {
	case "", PolicySwing:
		if cfg.SwingLookback <= 0 || cfg.RiskMultiple <= 0 {
			return nil, fmt.Errorf("%w: swing lookback %d and risk multiple %.4g must be > 0",
				models.ErrInvalidConfig, cfg.SwingLookback, cfg.RiskMultiple)
		}
		p = Swing{Lookback: cfg.SwingLookback, IncludeCurrent: cfg.SwingIncludeCurrent, RiskMultiple: cfg.RiskMultiple}
	case PolicyPercent:
		if cfg.StopPct <= 0 || cfg.TakePct <= 0 || cfg.StopPct >= 100 || cfg.TakePct >= 100 {
			return nil, fmt.Errorf("%w: stop %.4g%% take %.4g%% out of range",
				models.ErrInvalidConfig, cfg.StopPct, cfg.TakePct)
		}
		p = Percent{StopPct: cfg.StopPct, TakePct: cfg.TakePct}
	default:
		return nil, fmt.Errorf("%w: unknown risk policy %q", models.ErrInvalidConfig, cfg.Policy)
	}

	return &Sizer{
		policy:         p,
		notional:       cfg.Notional,
		leverage:       cfg.Leverage,
		qtyPrecision:   cfg.QtyPrecision,
		pricePrecision: cfg.PricePrecision,
	}, nil
}

func (s *Sizer) PolicyName() string { return s.policy.Name() }

// Size считает план в полной точности и округляет только результат.
func (s *Sizer) Size(side models.Side, entry float64, bars []models.Candle) (Plan, error) {
	if side != models.SideBuy && side != models.SideSell {
		return Plan{}, fmt.Errorf("size: unknown side %q", side)
	}
	qty, err := Quantity(s.notional, s.leverage, entry)
	if err != nil {
		return Plan{}, err
	}
	stop, take, err := s.policy.Levels(side, entry, bars)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Side:        side,
		Entry:       Round(entry, s.pricePrecision),
		StopLoss:    Round(stop, s.pricePrecision),
		TakeProfit:  Round(take, s.pricePrecision),
		Quantity:    Round(qty, s.qtyPrecision),
		RawQuantity: qty,
		Policy:      s.policy.Name(),
	}

	// после округления уровни не должны схлопнуться на цену входа
	ordered := plan.StopLoss < plan.Entry && plan.Entry < plan.TakeProfit
	if side == models.SideSell {
		ordered = plan.TakeProfit < plan.Entry && plan.Entry < plan.StopLoss
	}
	if !ordered {
		return Plan{}, fmt.Errorf("%w: %s sl=%.8g entry=%.8g tp=%.8g at %d decimals",
			models.ErrInvalidStop, side, plan.StopLoss, plan.Entry, plan.TakeProfit, s.pricePrecision)
	}
	// далёкий свинг у SELL уводит тейк ниже нуля, такой ордер биржа не примет
	if plan.StopLoss <= 0 || plan.TakeProfit <= 0 {
		return Plan{}, fmt.Errorf("%w: %s sl=%.8g tp=%.8g must be > 0",
			models.ErrInvalidStop, side, plan.StopLoss, plan.TakeProfit)
	}
	if plan.Quantity <= 0 {
		return Plan{}, fmt.Errorf("%w: %.8g rounds to zero at %d decimals",
			models.ErrZeroQuantity, qty, s.qtyPrecision)
	}
	return plan, nil
}

// Quantity = notional * leverage / entry.
func Quantity(notional, leverage, entry float64) (float64, error) {
	if entry <= 0 || math.IsNaN(entry) || math.IsInf(entry, 0) {
		return 0, fmt.Errorf("%w: entry %.8g", models.ErrInvalidPrice, entry)
	}
	return notional * leverage / entry, nil
}

// Round округляет до places знаков, половина: от нуля.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
