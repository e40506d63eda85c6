package exchange

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

// BinanceExecutor открывает позицию рыночным ордером и ставит
// STOP_MARKET и TAKE_PROFIT_MARKET на закрытие всей позиции.
type BinanceExecutor struct {
	b          *Binance
	leverage   int
	marginType futures.MarginType
}

func NewBinanceExecutor(b *Binance, leverage float64, marginMode string) *BinanceExecutor {
	mt := futures.MarginTypeIsolated
	if strings.EqualFold(marginMode, "cross") {
		mt = futures.MarginTypeCrossed
	}
	lev := int(leverage)
	if lev < 1 {
		lev = 1
	}
	return &BinanceExecutor{b: b, leverage: lev, marginType: mt}
}

func (e *BinanceExecutor) Name() string { return "binance" }

func (e *BinanceExecutor) Send(ctx context.Context, sig models.Signal) error {
	side, closeSide := futures.SideTypeBuy, futures.SideTypeSell
	if sig.Side == models.SideSell {
		side, closeSide = futures.SideTypeSell, futures.SideTypeBuy
	}
	c := e.b.client

	if err := e.b.limiter.Wait(ctx); err != nil {
		return err
	}
	err := c.NewChangeMarginTypeService().Symbol(sig.Symbol).MarginType(e.marginType).Do(ctx)
	if err != nil && !marginAlreadySet(err) {
		return fmt.Errorf("binance margin type %s: %w", sig.Symbol, err)
	}

	if err := e.b.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.NewChangeLeverageService().Symbol(sig.Symbol).Leverage(e.leverage).Do(ctx); err != nil {
		return fmt.Errorf("binance leverage %s x%d: %w", sig.Symbol, e.leverage, err)
	}

	if err := e.b.limiter.Wait(ctx); err != nil {
		return err
	}
	entry, err := c.NewCreateOrderService().
		Symbol(sig.Symbol).
		Side(side).
		Type(futures.OrderTypeMarket).
		Quantity(formatFloat(sig.Quantity)).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("binance market %s %s: %w", sig.Side, sig.Symbol, err)
	}
	logger.Info("[ORDER] binance %s %s qty=%s orderId=%d", sig.Side, sig.Symbol, formatFloat(sig.Quantity), entry.OrderID)

	// защитные ордера: сбой одного не отменяет другой
	var errs []string
	for _, p := range []struct {
		typ   futures.OrderType
		price float64
	}{
		{futures.OrderTypeStopMarket, sig.StopLoss},
		{futures.OrderTypeTakeProfitMarket, sig.TakeProfit},
	} {
		if err := e.b.limiter.Wait(ctx); err != nil {
			return err
		}
		_, err := c.NewCreateOrderService().
			Symbol(sig.Symbol).
			Side(closeSide).
			Type(p.typ).
			StopPrice(formatFloat(p.price)).
			ClosePosition(true).
			WorkingType(futures.WorkingTypeMarkPrice).
			Do(ctx)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s @ %s: %v", p.typ, formatFloat(p.price), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("binance protective orders %s: %s", sig.Symbol, strings.Join(errs, "; "))
	}
	return nil
}

// -4046: "No need to change margin type."
func marginAlreadySet(err error) bool {
	var apiErr *common.APIError
	return errors.As(err, &apiErr) && apiErr.Code == -4046
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
