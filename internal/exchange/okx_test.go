package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
)

func newOKXServer(t *testing.T, handler http.HandlerFunc) *OKX {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOKX(Options{
		BaseURL:    srv.URL,
		APIKey:     "key",
		APISecret:  "secret",
		Passphrase: "pass",
		RateLimit:  1000,
		Burst:      10,
		Timeout:    time.Second,
	})
}

func TestOKXGetCandles(t *testing.T) {
	t.Parallel()
	c := newOKXServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/market/candles", r.URL.Path)
		assert.Equal(t, "BTC-USDT-SWAP", r.URL.Query().Get("instId"))
		assert.Equal(t, "4H", r.URL.Query().Get("bar"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		// newest-first, как отдаёт OKX
		_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[
			["1700007200000","102","103","101","102.5","12","0","0","0"],
			["1700003600000","101","102.5","100.5","102","11","0","0","1"],
			["1700000000000","100","101.5","99.5","101","10","0","0","1"]
		]}`)
	})

	s, err := c.GetCandles(context.Background(), "BTC-USDT-SWAP", "4h", 3)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, "4h", s.Interval)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), s.Candles[0].Start)
	assert.Equal(t, 101.0, s.Candles[0].Close)
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 102.5, last.Close)
	assert.Equal(t, 12.0, last.Volume)
}

func TestOKXErrors(t *testing.T) {
	t.Parallel()
	c := newOKXServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v5/market/tickers" {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, "slow down")
			return
		}
		_, _ = io.WriteString(w, `{"code":"51001","msg":"Instrument ID does not exist","data":[]}`)
	})

	_, err := c.GetCandles(context.Background(), "NOPE-USDT-SWAP", "1h", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "51001")

	_, err = c.GetTickers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = c.GetCandles(context.Background(), "BTC-USDT-SWAP", "7h", 10)
	assert.Error(t, err)
}

func TestOKXGetTickers(t *testing.T) {
	t.Parallel()
	c := newOKXServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SWAP", r.URL.Query().Get("instType"))
		_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[
			{"instId":"BTC-USDT-SWAP","last":"50000","volCcy24h":"2"},
			{"instId":"ETH-USDT-SWAP","last":"bad","volCcy24h":"2"},
			{"instId":"SOL-USD-SWAP","last":"100","volCcy24h":"30"}
		]}`)
	})

	tickers, err := c.GetTickers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Ticker{
		{Symbol: "BTC-USDT-SWAP", LastPrice: 50000, QuoteVolume: 100000},
		{Symbol: "SOL-USD-SWAP", LastPrice: 100, QuoteVolume: 3000},
	}, tickers)
}

func TestOKXInstrumentContracts(t *testing.T) {
	t.Parallel()
	inst := OKXInstrument{InstID: "ETH-USDT-SWAP", CtVal: 0.1, LotSz: 1, MinSz: 1}

	sz, err := inst.Contracts(1.25)
	require.NoError(t, err)
	assert.Equal(t, "12", sz)

	_, err = inst.Contracts(0.05)
	assert.ErrorIs(t, err, models.ErrZeroQuantity)

	frac := OKXInstrument{InstID: "BTC-USDT-SWAP", CtVal: 0.01, LotSz: 0.1, MinSz: 0.1}
	sz, err = frac.Contracts(0.0234)
	require.NoError(t, err)
	assert.Equal(t, "2.3", sz)
}

func TestOKXExecutorSend(t *testing.T) {
	t.Parallel()
	var orderBody map[string]any
	var leverageCalled bool

	c := newOKXServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v5/public/instruments":
			_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[
				{"instId":"ETH-USDT-SWAP","ctVal":"0.1","ctMult":"1","lotSz":"1","minSz":"1","state":"live"}]}`)
		case "/api/v5/account/set-leverage":
			leverageCalled = true
			_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[{"lever":"10","mgnMode":"isolated"}]}`)
		case "/api/v5/trade/order":
			body, _ := io.ReadAll(r.Body)
			ts := r.Header.Get("OK-ACCESS-TIMESTAMP")
			mac := hmac.New(sha256.New, []byte("secret"))
			mac.Write([]byte(ts + "POST" + "/api/v5/trade/order" + string(body)))
			assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), r.Header.Get("OK-ACCESS-SIGN"))
			assert.Equal(t, "key", r.Header.Get("OK-ACCESS-KEY"))
			assert.Equal(t, "pass", r.Header.Get("OK-ACCESS-PASSPHRASE"))
			assert.NoError(t, sonic.Unmarshal(body, &orderBody))
			_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[{"ordId":"777","sCode":"0","sMsg":""}]}`)
		default:
			http.NotFound(w, r)
		}
	})

	ex := NewOKXExecutor(c, 10, "isolated")
	assert.Equal(t, "okx", ex.Name())
	err := ex.Send(context.Background(), models.Signal{
		Symbol:     "ETH-USDT-SWAP",
		Side:       models.SideSell,
		Price:      2000,
		StopLoss:   2100,
		TakeProfit: 1800,
		Quantity:   1.25,
	})
	require.NoError(t, err)
	assert.True(t, leverageCalled)
	assert.Equal(t, "sell", orderBody["side"])
	assert.Equal(t, "12", orderBody["sz"])
	assert.Equal(t, "market", orderBody["ordType"])
	algos, ok := orderBody["attachAlgoOrds"].([]any)
	require.True(t, ok)
	require.Len(t, algos, 1)
	algo := algos[0].(map[string]any)
	assert.Equal(t, "1800", algo["tpTriggerPx"])
	assert.Equal(t, "2100", algo["slTriggerPx"])
}

func TestOKXExecutorRejected(t *testing.T) {
	t.Parallel()
	c := newOKXServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v5/public/instruments":
			_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[
				{"instId":"ETH-USDT-SWAP","ctVal":"0.1","lotSz":"1","minSz":"1","state":"live"}]}`)
		case "/api/v5/account/set-leverage":
			_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[]}`)
		default:
			_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[{"ordId":"","sCode":"51008","sMsg":"Insufficient balance"}]}`)
		}
	})

	err := NewOKXExecutor(c, 5, "cross").Send(context.Background(), models.Signal{
		Symbol: "ETH-USDT-SWAP", Side: models.SideBuy, StopLoss: 1900, TakeProfit: 2200, Quantity: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "51008")
}
