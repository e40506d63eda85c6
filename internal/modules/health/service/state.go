package service

import (
	"sync"
	"sync/atomic"
	"time"
)

// CycleStats: итог последнего цикла для /healthz.
type CycleStats struct {
	Universe int
	Scanned  int
	Skipped  int
	Signals  int
	Duration time.Duration
}

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastCycleUnix atomic.Int64 // unix seconds
	cycles        atomic.Int64

	mu    sync.RWMutex
	stats CycleStats
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// TouchCycle вызывается раннером после каждого цикла.
func (s *State) TouchCycle(t time.Time, stats CycleStats) {
	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	s.lastCycleUnix.Store(t.Unix())
	s.cycles.Add(1)
}

func (s *State) LastCycle() time.Time {
	u := s.lastCycleUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) LastStats() CycleStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *State) Cycles() int64 { return s.cycles.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
