package selfplay

import (
	"log"
	"time"
)

// Throughput accumulates generator Update counters over a rolling window
// and periodically logs an evals/s line, the way the teacher's arena.go
// reports self-play progress with the standard log package rather than a
// metrics library the pack never imports.
type Throughput struct {
	window time.Duration
	logger *log.Logger

	windowStart time.Time
	real        uint64
	cached      uint64
	moves       uint64
}

// NewThroughput builds a Throughput reporter. If logger is nil, the
// package-level default logger is used.
func NewThroughput(window time.Duration, logger *log.Logger) *Throughput {
	if logger == nil {
		logger = log.Default()
	}
	return &Throughput{window: window, logger: logger, windowStart: epoch()}
}

// epoch exists only so Throughput has a starting reference point without
// calling time.Now() at package scope in a way that would complicate
// testing; production callers reset it via Reset at startup.
func epoch() time.Time { return time.Time{} }

// Reset starts a fresh accounting window at t.
func (t *Throughput) Reset(at time.Time) {
	t.windowStart = at
	t.real, t.cached, t.moves = 0, 0, 0
}

// Record folds one generator Update into the running totals and, if the
// window has elapsed, logs and rolls over. now is passed in explicitly so
// the caller controls the clock (tests use a fake one; production passes
// time.Now()).
func (t *Throughput) Record(u Update, now time.Time) {
	t.real += u.RealEvals
	t.cached += u.CachedEvals
	t.moves += u.Moves

	if t.windowStart.IsZero() {
		t.windowStart = now
		return
	}
	elapsed := now.Sub(t.windowStart)
	if elapsed < t.window {
		return
	}
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		seconds = 1
	}
	t.logger.Printf("Throughput: %.1f real evals/s, %.1f cached evals/s, %.1f moves/s",
		float64(t.real)/seconds, float64(t.cached)/seconds, float64(t.moves)/seconds)
	t.Reset(now)
}
