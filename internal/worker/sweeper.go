package worker

import (
	"context"
	"time"

	"taskBoard/internal/logger"

	"go.uber.org/zap"
)

const defaultInterval = 5 * time.Minute

// Pruner drops entries that are no longer live at the given time.
type Pruner interface {
	Prune(now time.Time) int
}

type target struct {
	name   string
	pruner Pruner
}

// Sweeper periodically prunes in-process state that would otherwise grow
// without bound: revoked session ids and rate-limit counters.
type Sweeper struct {
	targets  []target
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(interval *time.Duration) *Sweeper {
	intervalToSet := defaultInterval
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}
	return &Sweeper{
		interval: intervalToSet,
		now:      time.Now,
	}
}

func (w *Sweeper) Add(name string, p Pruner) *Sweeper {
	w.targets = append(w.targets, target{name: name, pruner: p})
	return w
}

func (w *Sweeper) Interval() time.Duration {
	return w.interval
}

// Start blocks until ctx is cancelled.
func (w *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: sweeper stopping")
			return
		}
	}
}

// Check runs one pass over every target and returns the total removed.
func (w *Sweeper) Check(ctx context.Context) int {
	start := time.Now()
	now := w.now()

	total := 0
	for _, t := range w.targets {
		if ctx.Err() != nil {
			break
		}
		removed := t.pruner.Prune(now)
		total += removed
		if removed > 0 {
			logger.Info("Worker: pruned expired entries",
				zap.String("target", t.name),
				zap.Int("removed", removed))
		}
	}

	logger.Info("Worker: sweep finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("targets", len(w.targets)),
		zap.Int("removed", total))
	return total
}
