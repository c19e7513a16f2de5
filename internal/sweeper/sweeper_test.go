package sweeper

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls int64
	err   error
}

func (c *countingSweeper) SweepDeadlines(_ context.Context, _ time.Time) (int, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.err != nil {
		return 0, c.err
	}
	return 1, nil
}

func TestNewDefaultsInterval(t *testing.T) {
	s := New(&countingSweeper{}, 0)
	if s.interval != DefaultInterval {
		t.Errorf("expected default interval %v, got %v", DefaultInterval, s.interval)
	}
	s = New(&countingSweeper{}, 5*time.Second)
	if s.interval != 5*time.Second {
		t.Errorf("expected 5s interval, got %v", s.interval)
	}
}

func TestRunSweepsImmediatelyAndOnTicks(t *testing.T) {
	svc := &countingSweeper{}
	s := New(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(55 * time.Millisecond)
	cancel()
	<-done

	calls := atomic.LoadInt64(&svc.calls)
	if calls < 2 {
		t.Errorf("expected at least 2 sweeps (immediate plus ticks), got %d", calls)
	}
}

func TestRunKeepsGoingAfterSweepError(t *testing.T) {
	svc := &countingSweeper{err: fmt.Errorf("db down")}
	s := New(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()
	<-done

	if atomic.LoadInt64(&svc.calls) < 2 {
		t.Errorf("expected the loop to keep sweeping after an error, got %d calls", svc.calls)
	}
}
