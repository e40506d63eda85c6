package models

import (
	"fmt"
	"time"
)

type StrategyType string

const (
	StrategyCrossover StrategyType = "crossover"
	StrategyReversal  StrategyType = "reversal"
)

// Side как в раннере: "BUY"/"SELL" или пустая строка.
type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func (s Side) String() string {
	if s == SideNone {
		return "NONE"
	}
	return string(s)
}

// Opposite: зеркальная сторона, для NONE остаётся NONE.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	}
	return SideNone
}

// Signal создаётся только когда стратегия сработала, отдаётся эмиттеру и больше не меняется.
type Signal struct {
	Symbol      string       `json:"symbol"`
	Side        Side         `json:"side"`
	Price       float64      `json:"price"`
	StopLoss    float64      `json:"stop_loss"`
	TakeProfit  float64      `json:"take_profit"`
	Quantity    float64      `json:"quantity"`
	GeneratedAt time.Time    `json:"generated_at"`
	Strategy    StrategyType `json:"strategy"`
	Timeframes  []string     `json:"timeframes"`
	Sizing      string       `json:"sizing"`
	Reason      string       `json:"reason"`
}

func (s Signal) String() string {
	return fmt.Sprintf("%s %s @ %.8g SL=%.8g TP=%.8g qty=%.8g",
		s.Symbol, s.Side, s.Price, s.StopLoss, s.TakeProfit, s.Quantity)
}
