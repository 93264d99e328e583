package accrual

import (
	"context"
	"errors"
	"sync"
	"time"

	accrualerrors "go-leave/internal/accrual/errors"

	"go.uber.org/zap"
)

const defaultCheckInterval = time.Hour

// Scheduler checks on every tick whether the current month has been
// credited yet. The service guard makes repeated ticks within a month no-ops.
type Scheduler struct {
	service  Service
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(service Service, interval time.Duration, logger ...*zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	l := zap.L().Named("accrual.scheduler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.scheduler")
	}
	return &Scheduler{
		service:  service,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

// Start runs one check immediately, then one per interval until Stop or ctx
// cancellation. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("accrual scheduler started", zap.Duration("interval", s.interval))
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("accrual scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	resp, err := s.service.RunMonthly(ctx, s.now())
	switch {
	case errors.Is(err, accrualerrors.ErrAlreadyApplied):
		s.logger.Debug("monthly accrual already applied")
	case err != nil:
		if ctx.Err() == nil {
			s.logger.Error("monthly accrual failed", zap.Error(err))
		}
	default:
		s.logger.Info("monthly accrual ran",
			zap.String("month", resp.Month),
			zap.Int64("users", resp.UsersCredited),
		)
	}
}
