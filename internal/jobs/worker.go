package jobs

import (
	"context"
	"log/slog"
	"math"
	"time"

	"bookapi/internal/store"
)

const maxBackoff = 10 * time.Minute

// PurgeWorker periodically drops deny-list entries whose token has expired.
// Backends with native expiry report zero removals.
type PurgeWorker struct {
	Denylist store.Denylist
	Interval time.Duration
	Log      *slog.Logger

	now      func() time.Time
	failures int
}

func (w *PurgeWorker) Run(ctx context.Context) {
	if w.Interval <= 0 {
		return
	}
	timer := time.NewTimer(w.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			timer.Reset(w.tick(ctx))
		}
	}
}

// tick runs one purge and returns the delay before the next one.
func (w *PurgeWorker) tick(ctx context.Context) time.Duration {
	n, err := w.Denylist.PurgeExpired(ctx, w.clock())
	if err != nil {
		if ctx.Err() != nil {
			return w.Interval
		}
		w.failures++
		delay := w.backoff()
		w.Log.Warn("denylist purge failed", "error", err, "attempt", w.failures, "retry_in", delay.String())
		return delay
	}
	w.failures = 0
	if n > 0 {
		w.Log.Info("denylist purged", "removed", n)
	}
	return w.Interval
}

func (w *PurgeWorker) backoff() time.Duration {
	sec := math.Min(math.Pow(2, float64(w.failures)), maxBackoff.Seconds())
	return time.Duration(sec) * time.Second
}

func (w *PurgeWorker) clock() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}
