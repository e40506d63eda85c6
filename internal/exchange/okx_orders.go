package exchange

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

// OKXInstrument: то, что нужно для перевода объёма в контракты.
type OKXInstrument struct {
	InstID string
	CtVal  float64 // базовой валюты в одном контракте, с учётом ctMult
	LotSz  float64
	MinSz  float64
}

type okxInstrumentRow struct {
	InstID string `json:"instId"`
	CtVal  string `json:"ctVal"`
	CtMult string `json:"ctMult"`
	LotSz  string `json:"lotSz"`
	MinSz  string `json:"minSz"`
	State  string `json:"state"`
}

func (c *OKX) Instrument(ctx context.Context, instID string) (OKXInstrument, error) {
	rows, err := okxGet[okxInstrumentRow](ctx, c, "/api/v5/public/instruments", url.Values{
		"instType": {"SWAP"},
		"instId":   {instID},
	})
	if err != nil {
		return OKXInstrument{}, fmt.Errorf("okx instrument %s: %w", instID, err)
	}
	if len(rows) == 0 {
		return OKXInstrument{}, fmt.Errorf("instrument %s not found", instID)
	}
	inst := rows[0]
	if inst.State != "" && inst.State != "live" {
		return OKXInstrument{}, fmt.Errorf("instrument %s not live: state=%s", instID, inst.State)
	}

	parsePos := func(name, s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return 0, fmt.Errorf("%s parse: %v (%q)", name, err, s)
		}
		return v, nil
	}
	ctVal, err := parsePos("ctVal", inst.CtVal)
	if err != nil {
		return OKXInstrument{}, err
	}
	lotSz, err := parsePos("lotSz", inst.LotSz)
	if err != nil {
		return OKXInstrument{}, err
	}
	minSz, err := parsePos("minSz", inst.MinSz)
	if err != nil {
		return OKXInstrument{}, err
	}
	if m, err := strconv.ParseFloat(inst.CtMult, 64); err == nil && m > 0 {
		ctVal *= m
	}
	return OKXInstrument{InstID: inst.InstID, CtVal: ctVal, LotSz: lotSz, MinSz: minSz}, nil
}

// Contracts переводит объём в базовой валюте в контракты, вниз до кратного lotSz.
func (i OKXInstrument) Contracts(qty float64) (string, error) {
	raw := decimal.NewFromFloat(qty).Div(decimal.NewFromFloat(i.CtVal))
	lot := decimal.NewFromFloat(i.LotSz)
	sz := raw.Div(lot).Floor().Mul(lot)
	if sz.LessThan(decimal.NewFromFloat(i.MinSz)) {
		return "", fmt.Errorf("%w: %s contracts below min size %s for %s",
			models.ErrZeroQuantity, sz.String(), decimal.NewFromFloat(i.MinSz).String(), i.InstID)
	}
	return sz.String(), nil
}

// OKXExecutor: рыночный ордер с прикреплёнными TP/SL.
type OKXExecutor struct {
	c        *OKX
	leverage float64
	tdMode   string
}

func NewOKXExecutor(c *OKX, leverage float64, marginMode string) *OKXExecutor {
	mode := "isolated"
	if strings.EqualFold(marginMode, "cross") {
		mode = "cross"
	}
	return &OKXExecutor{c: c, leverage: leverage, tdMode: mode}
}

func (e *OKXExecutor) Name() string { return "okx" }

type okxOrderAck struct {
	OrdID string `json:"ordId"`
	SCode string `json:"sCode"`
	SMsg  string `json:"sMsg"`
}

func (e *OKXExecutor) Send(ctx context.Context, sig models.Signal) error {
	inst, err := e.c.Instrument(ctx, sig.Symbol)
	if err != nil {
		return err
	}
	sz, err := inst.Contracts(sig.Quantity)
	if err != nil {
		return err
	}

	if _, err := e.post(ctx, "/api/v5/account/set-leverage", map[string]any{
		"instId":  sig.Symbol,
		"lever":   formatFloat(e.leverage),
		"mgnMode": e.tdMode,
	}); err != nil {
		return fmt.Errorf("okx set leverage %s: %w", sig.Symbol, err)
	}

	side := "buy"
	if sig.Side == models.SideSell {
		side = "sell"
	}
	acks, err := e.post(ctx, "/api/v5/trade/order", map[string]any{
		"instId":  sig.Symbol,
		"tdMode":  e.tdMode,
		"side":    side,
		"ordType": "market",
		"sz":      sz,
		"attachAlgoOrds": []map[string]string{{
			"tpTriggerPx": formatFloat(sig.TakeProfit),
			"tpOrdPx":     "-1",
			"slTriggerPx": formatFloat(sig.StopLoss),
			"slOrdPx":     "-1",
		}},
	})
	if err != nil {
		return fmt.Errorf("okx order %s %s: %w", sig.Side, sig.Symbol, err)
	}
	if len(acks) == 0 || acks[0].SCode != "0" {
		var msg string
		if len(acks) > 0 {
			msg = acks[0].SCode + " " + acks[0].SMsg
		}
		return fmt.Errorf("okx order %s rejected: %s", sig.Symbol, msg)
	}
	logger.Info("[ORDER] okx %s %s sz=%s ordId=%s", sig.Side, sig.Symbol, sz, acks[0].OrdID)
	return nil
}

func (e *OKXExecutor) post(ctx context.Context, path string, body any) ([]okxOrderAck, error) {
	payload, err := sonic.Marshal(body)
	if err != nil {
		return nil, err
	}
	if err := e.c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := e.c.signedRequest(ctx, http.MethodPost, path, string(payload))
	if err != nil {
		return nil, err
	}
	return okxDo[okxOrderAck](e.c, req)
}
