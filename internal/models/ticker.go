package models

// Ticker: суточная статистика по инструменту, из неё строится watchlist.
type Ticker struct {
	Symbol      string
	LastPrice   float64
	QuoteVolume float64 // оборот в котируемой валюте (USDT)
}
