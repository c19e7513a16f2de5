// Package sweeper runs the deadline sweep on a fixed interval. The sweep
// itself is an ordinary guarded-transition caller, so overlapping runs and
// multiple instances are harmless.
package sweeper

import (
	"context"
	"log"
	"time"
)

// DeadlineSweeper is the single operation the loop drives.
type DeadlineSweeper interface {
	SweepDeadlines(ctx context.Context, now time.Time) (int, error)
}

// DefaultInterval is how often expired swaps are checked.
const DefaultInterval = time.Minute

type Sweeper struct {
	svc      DeadlineSweeper
	interval time.Duration
}

func New(svc DeadlineSweeper, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{svc: svc, interval: interval}
}

// Run sweeps once immediately, then on every tick until the context is
// cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Deadline sweeper stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	swept, err := s.svc.SweepDeadlines(ctx, time.Now())
	if err != nil {
		log.Printf("Deadline sweep failed: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("Deadline sweep closed %d expired swaps", swept)
	}
}
