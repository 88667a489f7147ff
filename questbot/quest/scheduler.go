package quest

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler periodically sweeps for stale acceptances. It does nothing when
// the manager's accept timeout is disabled.
type Scheduler struct {
	manager  *Manager
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(m *Manager, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Scheduler{manager: m, interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) {
	if s.manager.cfg.AcceptTimeout <= 0 {
		slog.Info("Acceptance expiry disabled",
			slog.String("type", "quest"))
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()

	slog.Info("Acceptance expiry scheduler started",
		slog.String("type", "quest"),
		slog.Duration("interval", s.interval),
		slog.Duration("timeout", s.manager.cfg.AcceptTimeout))
}

func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Scheduler) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	expired, err := s.manager.ExpireStaleAcceptances(sweepCtx)
	if err != nil {
		slog.Error("Acceptance expiry sweep failed",
			slog.String("type", "quest"),
			slog.Any("error", err))
		return
	}
	if expired > 0 {
		slog.Info("Acceptance expiry sweep finished",
			slog.String("type", "quest"),
			slog.Int("expired", expired))
	}
}
