package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/time/rate"

	"signal_bot/internal/models"
)

const okxBaseURL = "https://www.okx.com"

// OKX: публичный REST OKX для SWAP-инструментов и подписанные торговые запросы.
type OKX struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	apiSecret string
	passph    string
	limiter   *rate.Limiter
	now       func() time.Time
}

func NewOKX(opts Options) *OKX {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = okxBaseURL
	}
	return &OKX{
		http:      opts.httpClient(),
		baseURL:   base,
		apiKey:    opts.APIKey,
		apiSecret: opts.APISecret,
		passph:    opts.Passphrase,
		limiter:   opts.limiter(),
		now:       time.Now,
	}
}

type okxEnvelope[T any] struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []T    `json:"data"`
}

// okxGet выполняет публичный GET и разбирает обёртку {code,msg,data}.
func okxGet[T any](ctx context.Context, c *OKX, path string, query url.Values) ([]T, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return okxDo[T](c, req)
}

func okxDo[T any](c *OKX, req *http.Request) ([]T, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}
	var r okxEnvelope[T]
	if err := sonic.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	if r.Code != "0" {
		return nil, fmt.Errorf("okx %s error: code=%s msg=%s", req.URL.Path, r.Code, r.Msg)
	}
	return r.Data, nil
}

// GetCandles: строки OKX [ts, o, h, l, c, vol, volCcy, volCcyQuote, confirm], newest-first.
func (c *OKX) GetCandles(ctx context.Context, instID, interval string, limit int) (models.CandleSeries, error) {
	if limit <= 0 {
		limit = 100
	}
	bar, err := okxBar(interval)
	if err != nil {
		return models.CandleSeries{}, err
	}

	rows, err := okxGet[[]string](ctx, c, "/api/v5/market/candles", url.Values{
		"instId": {instID},
		"bar":    {bar},
		"limit":  {strconv.Itoa(limit)},
	})
	if err != nil {
		return models.CandleSeries{}, fmt.Errorf("okx candles %s %s: %w", instID, interval, err)
	}

	// разворачиваем, чтобы серия шла по времени
	candles := make([]models.Candle, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if len(row) < 6 {
			continue
		}
		tsMs, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		var vals [5]float64
		ok := true
		for j := 0; j < 5; j++ {
			v, err := strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok || vals[3] <= 0 {
			continue
		}
		candles = append(candles, models.Candle{
			Start:  time.UnixMilli(tsMs).UTC(),
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return models.NewCandleSeries(instID, interval, candles)
}

type okxTicker struct {
	InstID    string `json:"instId"`
	Last      string `json:"last"`
	VolCcy24h string `json:"volCcy24h"`
}

// GetTickers: все SWAP. volCcy24h у SWAP в базовой валюте, оборот в котируемой = volCcy24h*last.
func (c *OKX) GetTickers(ctx context.Context) ([]models.Ticker, error) {
	data, err := okxGet[okxTicker](ctx, c, "/api/v5/market/tickers", url.Values{"instType": {"SWAP"}})
	if err != nil {
		return nil, fmt.Errorf("okx tickers: %w", err)
	}
	out := make([]models.Ticker, 0, len(data))
	for _, t := range data {
		last, err1 := strconv.ParseFloat(t.Last, 64)
		vol, err2 := strconv.ParseFloat(t.VolCcy24h, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, models.Ticker{Symbol: t.InstID, LastPrice: last, QuoteVolume: vol * last})
	}
	return out, nil
}

func okxBar(tf string) (string, error) {
	switch s := strings.ToLower(strings.TrimSpace(tf)); s {
	case "1m", "3m", "5m", "15m", "30m":
		return s, nil
	case "60m", "1h":
		return "1H", nil
	case "2h":
		return "2H", nil
	case "4h":
		return "4H", nil
	case "6h":
		return "6H", nil
	case "12h":
		return "12H", nil
	case "1d":
		return "1D", nil
	case "1w":
		return "1W", nil
	}
	return "", fmt.Errorf("unsupported timeframe for OKX bar: %q", tf)
}

// sign: OK-ACCESS-SIGN: base64(hmac_sha256(ts + METHOD + path + body)).
func (c *OKX) sign(ts, method, requestPath, body string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(ts + strings.ToUpper(method) + requestPath + body))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (c *OKX) signedRequest(ctx context.Context, method, requestPath, body string) (*http.Request, error) {
	ts := c.now().UTC().Format("2006-01-02T15:04:05.000Z")
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("OK-ACCESS-KEY", c.apiKey)
	req.Header.Set("OK-ACCESS-SIGN", c.sign(ts, method, requestPath, body))
	req.Header.Set("OK-ACCESS-TIMESTAMP", ts)
	req.Header.Set("OK-ACCESS-PASSPHRASE", c.passph)
	return req, nil
}
