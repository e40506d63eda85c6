// Package universe выбирает символы для скана по обороту.
package universe

import (
	"math"
	"sort"
	"strings"

	"signal_bot/internal/models"
)

// Ranker оставляет символы с нужной котируемой валютой и берёт TopN по обороту.
// TopN <= 0: без ограничения.
type Ranker struct {
	QuoteSuffix string
	TopN        int
}

// Rank не меняет входной слайс. При равном обороте порядок ленты сохраняется.
func (r Ranker) Rank(tickers []models.Ticker) []string {
	suffix := strings.ToUpper(r.QuoteSuffix)

	list := make([]models.Ticker, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(strings.ToUpper(t.Symbol), suffix) {
			continue
		}
		v := t.QuoteVolume
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		list = append(list, t)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].QuoteVolume > list[j].QuoteVolume
	})

	if r.TopN > 0 && len(list) > r.TopN {
		list = list[:r.TopN]
	}
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.Symbol
	}
	return out
}
