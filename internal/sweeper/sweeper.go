// Package sweeper periodically removes state whose wall-clock deadline has
// passed: handle reservations, pairing sessions and expired envelopes.
package sweeper

import (
	"context"
	"time"

	"gnsnode/config"
	"gnsnode/pkg/logger"
)

type Sweepable interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type Target struct {
	Name string
	Sweepable
}

type Sweeper struct {
	targets  []Target
	interval time.Duration
	logger   logger.Logger
	now      func() time.Time
}

func New(cfg config.Sweeper, logger logger.Logger, targets ...Target) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Sweeper{
		targets:  targets,
		interval: cfg.Interval,
		logger:   logger.With("component", "sweeper"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs every target once. A failing target does not stop the others.
func (s *Sweeper) Sweep(ctx context.Context) map[string]int {
	now := s.now()
	removed := make(map[string]int, len(s.targets))
	for _, t := range s.targets {
		n, err := t.SweepExpired(ctx, now)
		if err != nil {
			s.logger.Error("sweep failed", "target", t.Name, "err", err)
			continue
		}
		removed[t.Name] = n
		if n > 0 {
			s.logger.Info("expired entries removed", "target", t.Name, "count", n)
		}
	}
	return removed
}
