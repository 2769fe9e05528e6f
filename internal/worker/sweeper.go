package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ReservationExpirer interface {
	ExpireStaleReservations(ctx context.Context, now time.Time) (int, error)
}

// ReservationSweeper periodically expires unpaid orders whose reservation
// hold outlived its TTL. A second sweep over the same set finds nothing;
// running with multiple replicas is safe for the same reason.
type ReservationSweeper struct {
	expirer  ReservationExpirer
	interval time.Duration
	log      *zap.Logger
}

func NewReservationSweeper(expirer ReservationExpirer, interval time.Duration, log *zap.Logger) *ReservationSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReservationSweeper{expirer: expirer, interval: interval, log: log}
}

func (s *ReservationSweeper) Run(ctx context.Context) error {
	s.log.Info("reservation sweeper started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reservation sweeper stopped")
			return nil
		case <-ticker.C:
			n, err := s.expirer.ExpireStaleReservations(ctx, time.Now().UTC())
			if err != nil {
				s.log.Error("reservation sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.log.Info("reservations expired", zap.Int("count", n))
			}
		}
	}
}
