package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Причины пропуска символа, значения label reason.
const (
	SkipFetch   = "fetch"
	SkipDecide  = "decide"
	SkipSize    = "size"
	SkipCooling = "cooldown"
)

// Metrics: все коллекторы скана.
type Metrics struct {
	CyclesTotal     *prometheus.CounterVec // labels: result=ok|error
	SymbolsScanned  prometheus.Counter
	SymbolsSkipped  *prometheus.CounterVec // labels: reason
	SignalsTotal    *prometheus.CounterVec // labels: side
	FetchRetries    prometheus.Counter
	CycleDuration   prometheus.Histogram
	UniverseSize    prometheus.Gauge
	LastCycleUnix   prometheus.Gauge
	EmitFailures    *prometheus.CounterVec // labels: sink
	CandleCacheHits *prometheus.CounterVec // labels: result=hit|miss|error
}

// New регистрирует коллекторы в reg. Nil reg: коллекторы без регистрации (тесты).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_cycles_total",
			Help: "Scan cycles finished, by result",
		}, []string{"result"}),
		SymbolsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalbot_symbols_scanned_total",
			Help: "Symbols evaluated across all cycles",
		}),
		SymbolsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_symbols_skipped_total",
			Help: "Symbols skipped, by reason",
		}, []string{"reason"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_signals_total",
			Help: "Signals emitted, by side",
		}, []string{"side"}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalbot_fetch_retries_total",
			Help: "Candle fetch attempts beyond the first",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalbot_cycle_duration_seconds",
			Help:    "Wall time of one scan cycle",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		UniverseSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalbot_universe_size",
			Help: "Symbols selected by the ranker in the last cycle",
		}),
		LastCycleUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalbot_last_cycle_timestamp_seconds",
			Help: "Unix time the last cycle finished",
		}),
		EmitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_emit_failures_total",
			Help: "Alert or execution sink failures, by sink",
		}, []string{"sink"}),
		CandleCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_candle_cache_total",
			Help: "Candle cache lookups, by result",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.CyclesTotal,
			m.SymbolsScanned,
			m.SymbolsSkipped,
			m.SignalsTotal,
			m.FetchRetries,
			m.CycleDuration,
			m.UniverseSize,
			m.LastCycleUnix,
			m.EmitFailures,
			m.CandleCacheHits,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// ObserveCycle фиксирует итог цикла.
func (m *Metrics) ObserveCycle(started, finished time.Time, universe int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CyclesTotal.WithLabelValues(result).Inc()
	m.CycleDuration.Observe(finished.Sub(started).Seconds())
	m.UniverseSize.Set(float64(universe))
	m.LastCycleUnix.Set(float64(finished.Unix()))
}

func (m *Metrics) Skip(reason string) {
	m.SymbolsSkipped.WithLabelValues(reason).Inc()
}
