package notify

import (
	"context"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

// Sink: один канал доставки сигнала: чат, журнал, биржа.
type Sink interface {
	Name() string
	Send(ctx context.Context, sig models.Signal) error
}

// Fanout рассылает сигнал во все каналы. Для скана это fire-and-forget:
// сбой канала логируется и считается, но наружу не уходит.
type Fanout struct {
	sinks   []Sink
	timeout time.Duration
	failed  func(sink string)
}

// NewFanout; timeout <= 0: без отдельного дедлайна на канал.
func NewFanout(timeout time.Duration, failed func(sink string), sinks ...Sink) *Fanout {
	if failed == nil {
		failed = func(string) {}
	}
	return &Fanout{sinks: sinks, timeout: timeout, failed: failed}
}

func (f *Fanout) Emit(ctx context.Context, sig models.Signal) {
	for _, s := range f.sinks {
		sctx, cancel := ctx, context.CancelFunc(func() {})
		if f.timeout > 0 {
			sctx, cancel = context.WithTimeout(ctx, f.timeout)
		}
		err := s.Send(sctx, sig)
		cancel()
		if err != nil {
			logger.Error("[ALERT] %s failed for %s %s: %v", s.Name(), sig.Side, sig.Symbol, err)
			f.failed(s.Name())
		}
	}
}

// Sinks: имена подключённых каналов, для лога на старте.
func (f *Fanout) Sinks() []string {
	out := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		out[i] = s.Name()
	}
	return out
}

// Stdout: всё пишет в лог.
type Stdout struct{}

func NewStdout() *Stdout { return &Stdout{} }

func (s *Stdout) Name() string { return "stdout" }

func (s *Stdout) Send(_ context.Context, sig models.Signal) error {
	logger.Info("[SIGNAL] %s strategy=%s tf=%v sizing=%s reason=%q",
		sig, sig.Strategy, sig.Timeframes, sig.Sizing, sig.Reason)
	return nil
}
