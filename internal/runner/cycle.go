package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"signal_bot/internal/metrics"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/health/service"
	"signal_bot/pkg/logger"
)

// CycleReport: что произошло за один цикл.
type CycleReport struct {
	Started  time.Time
	Finished time.Time
	Universe []string
	Scanned  int
	Skipped  map[string]int // reason -> count
	Signals  []models.Signal
}

func (c CycleReport) Duration() time.Duration { return c.Finished.Sub(c.Started) }

func (c CycleReport) SkippedTotal() int {
	n := 0
	for _, v := range c.Skipped {
		n += v
	}
	return n
}

// outcome: результат одного символа. skip пустой, если символ прошёл до конца.
type outcome struct {
	signal *models.Signal
	skip   string
}

// RunCycle проходит весь список один раз. Ошибка возвращается только если
// не удалось получить тикеры; проблемы отдельных символов логируются и пропускаются.
func (r *Runner) RunCycle(ctx context.Context) (rep CycleReport, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "scan.cycle")
	defer span.Finish()

	rep = CycleReport{Started: r.now(), Skipped: make(map[string]int)}
	defer func() {
		rep.Finished = r.now()
		r.metrics.ObserveCycle(rep.Started, rep.Finished, len(rep.Universe), err)
		span.SetTag("universe", len(rep.Universe))
		span.SetTag("signals", len(rep.Signals))
		if err != nil {
			ext.Error.Set(span, true)
			span.LogKV("error", err.Error())
			return
		}
		r.state.TouchCycle(rep.Finished, service.CycleStats{
			Universe: len(rep.Universe),
			Scanned:  rep.Scanned,
			Skipped:  rep.SkippedTotal(),
			Signals:  len(rep.Signals),
			Duration: rep.Duration(),
		})
		r.state.SetReady(true)
	}()

	tickers, err := r.market.GetTickers(ctx)
	if err != nil {
		return rep, fmt.Errorf("get tickers: %w", err)
	}
	rep.Universe = r.ranker.Rank(tickers)
	if len(rep.Universe) == 0 {
		logger.Warn("[SCAN] empty universe from %d tickers (quote=%s)", len(tickers), r.ranker.QuoteSuffix)
		return rep, nil
	}
	logger.Debug("[SCAN] universe: %v", rep.Universe)

	results := r.evaluateAll(ctx, rep.Universe)
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	for _, o := range results {
		rep.Scanned++
		r.metrics.SymbolsScanned.Inc()

		if o.skip != "" {
			rep.Skipped[o.skip]++
			r.metrics.Skip(o.skip)
			continue
		}
		if o.signal == nil {
			continue
		}
		sig := *o.signal
		if !r.allow(sig) {
			logger.Debug("[SCAN] %s %s cooling down", sig.Symbol, sig.Side)
			rep.Skipped[metrics.SkipCooling]++
			r.metrics.Skip(metrics.SkipCooling)
			continue
		}

		r.emitter.Emit(ctx, sig)
		rep.Signals = append(rep.Signals, sig)
		r.metrics.SignalsTotal.WithLabelValues(string(sig.Side)).Inc()
	}
	return rep, nil
}

// evaluateAll считает символы с ограничением по воркерам.
// Результаты лежат по индексу символа, порядок отправки не зависит от гонок.
func (r *Runner) evaluateAll(ctx context.Context, symbols []string) []outcome {
	workers := r.cfg.Scan.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]outcome, len(symbols))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, symbol := range symbols {
		select {
		case <-ctx.Done():
			wg.Wait()
			return results
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.evaluate(ctx, symbol)
		}(i, symbol)
	}
	wg.Wait()
	return results
}

// evaluate: FETCH → TRANSFORM → INDICATE → DECIDE → SIZE для одного символа.
func (r *Runner) evaluate(ctx context.Context, symbol string) outcome {
	span, ctx := opentracing.StartSpanFromContext(ctx, "scan.symbol")
	defer span.Finish()
	span.SetTag("symbol", symbol)

	frames := make([]models.CandleSeries, 0, len(r.intervals))
	for _, tf := range r.intervals {
		s, err := r.fetchSeries(ctx, symbol, tf)
		if err != nil {
			logger.Warn("[FETCH] %s skipped: %v", symbol, err)
			span.SetTag("skip", metrics.SkipFetch)
			return outcome{skip: metrics.SkipFetch}
		}
		frames = append(frames, s)
	}

	side, err := r.engine.Decide(frames)
	if err != nil {
		logger.Warn("[SCAN] %s decide: %v", symbol, err)
		span.SetTag("skip", metrics.SkipDecide)
		return outcome{skip: metrics.SkipDecide}
	}
	if side == models.SideNone {
		return outcome{}
	}

	entry := frames[r.entryIdx]
	last, _ := entry.Last()
	plan, err := r.sizer.Size(side, last.Close, entry.Candles)
	if err != nil {
		logger.Warn("[SCAN] %s %s size: %v", symbol, side, err)
		span.SetTag("skip", metrics.SkipSize)
		return outcome{skip: metrics.SkipSize}
	}

	span.SetTag("side", string(side))
	return outcome{signal: &models.Signal{
		Symbol:      symbol,
		Side:        plan.Side,
		Price:       plan.Entry,
		StopLoss:    plan.StopLoss,
		TakeProfit:  plan.TakeProfit,
		Quantity:    plan.Quantity,
		GeneratedAt: r.now(),
		Strategy:    r.cfg.Strategy.Engine().Rule,
		Timeframes:  append([]string(nil), r.intervals...),
		Sizing:      plan.Policy,
		Reason:      fmt.Sprintf("%s %s confirmed on %s", r.engine.Name(), side, strings.Join(r.intervals, "/")),
	}}
}
