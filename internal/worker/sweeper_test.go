package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeExpirer struct {
	calls int32
	twice chan struct{}
}

func (f *fakeExpirer) ExpireStaleReservations(ctx context.Context, now time.Time) (int, error) {
	if atomic.AddInt32(&f.calls, 1) == 2 {
		close(f.twice)
	}
	return 1, nil
}

func TestReservationSweeper_TicksUntilCancelled(t *testing.T) {
	exp := &fakeExpirer{twice: make(chan struct{})}
	sweeper := NewReservationSweeper(exp, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan error, 1)
	go func() { finished <- sweeper.Run(ctx) }()

	select {
	case <-exp.twice:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ticked twice")
	}

	cancel()
	select {
	case err := <-finished:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}

func TestNewReservationSweeper_DefaultsInterval(t *testing.T) {
	s := NewReservationSweeper(&fakeExpirer{twice: make(chan struct{})}, 0, zap.NewNop())
	if s.interval != time.Minute {
		t.Fatalf("interval = %v, want 1m", s.interval)
	}
}
