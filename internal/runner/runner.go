package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"signal_bot/internal/exchange"
	"signal_bot/internal/metrics"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health/service"
	"signal_bot/internal/risk"
	"signal_bot/internal/strategy"
	"signal_bot/internal/universe"
	"signal_bot/pkg/logger"
)

// Emitter получает готовый сигнал. Ошибки доставки он логирует сам.
type Emitter interface {
	Emit(ctx context.Context, sig models.Signal)
}

type cooldownEntry struct {
	side  models.Side
	until time.Time
}

// Runner: цикл скана: рейтинг, свечи, решение, сайзинг, отправка.
type Runner struct {
	cfg     *config.Config
	market  exchange.MarketData
	engine  *strategy.Engine
	sizer   *risk.Sizer
	ranker  universe.Ranker
	emitter Emitter
	metrics *metrics.Metrics
	state   *service.State

	intervals []string
	entryIdx  int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex // cooldown
	cooldown map[string]cooldownEntry
}

func New(cfg *config.Config, market exchange.MarketData, emitter Emitter, m *metrics.Metrics, state *service.State) (*Runner, error) {
	engine, err := strategy.NewEngine(cfg.Strategy.Engine())
	if err != nil {
		return nil, err
	}
	sizer, err := risk.NewSizer(cfg.Risk.Sizer())
	if err != nil {
		return nil, err
	}

	intervals := cfg.Scan.Intervals
	if len(intervals) == 0 {
		return nil, fmt.Errorf("%w: no scan intervals", models.ErrInvalidConfig)
	}
	entryIdx := -1
	for i, tf := range intervals {
		if tf == cfg.EntryTF() {
			entryIdx = i
		}
	}
	if entryIdx < 0 {
		return nil, fmt.Errorf("%w: entry interval %q not in %v", models.ErrInvalidConfig, cfg.EntryTF(), intervals)
	}

	if m == nil {
		m = metrics.New(nil)
	}
	if state == nil {
		state = service.NewState()
	}

	return &Runner{
		cfg:       cfg,
		market:    market,
		engine:    engine,
		sizer:     sizer,
		ranker:    cfg.Universe.Ranker(),
		emitter:   emitter,
		metrics:   m,
		state:     state,
		intervals: intervals,
		entryIdx:  entryIdx,
		now:       time.Now,
		sleep:     sleepCtx,
		cooldown:  make(map[string]cooldownEntry),
	}, nil
}

// Run крутит циклы до отмены ctx. Ошибка цикла не останавливает цикл скана.
func (r *Runner) Run(ctx context.Context) error {
	logger.Info("[SCAN] ▶️ start: strategy=%s sizing=%s tf=%v top=%d sleep=%s",
		r.engine.Name(), r.sizer.PolicyName(), r.intervals, r.ranker.TopN, r.cfg.Scan.Sleep)

	for {
		rep, err := r.RunCycle(ctx)
		switch {
		case ctx.Err() != nil:
			logger.Info("[SCAN] stopped")
			return nil
		case err != nil:
			logger.Error("[SCAN] cycle failed: %v", err)
		default:
			logger.Info("[SCAN] cycle done in %s: universe=%d scanned=%d skipped=%d signals=%d",
				rep.Duration().Round(time.Millisecond), len(rep.Universe), rep.Scanned, rep.SkippedTotal(), len(rep.Signals))
		}

		if err := r.sleep(ctx, r.cfg.Scan.Sleep); err != nil {
			logger.Info("[SCAN] stopped")
			return nil
		}
	}
}

// allow: кулдаун по символу: тот же side не шлём повторно до истечения окна.
func (r *Runner) allow(sig models.Signal) bool {
	window := r.cfg.Scan.Cooldown
	if window <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.cooldown[sig.Symbol]; ok && e.side == sig.Side && sig.GeneratedAt.Before(e.until) {
		return false
	}
	r.cooldown[sig.Symbol] = cooldownEntry{side: sig.Side, until: sig.GeneratedAt.Add(window)}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
