package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"
)

// Sweeps is the part of the help request service the sweeper drives.
type Sweeps interface {
	SweepTimeouts(ctx context.Context) ([]uuid.UUID, error)
}

// Sweeper periodically forces expired pending help requests to unresolved.
type Sweeper struct {
	service  Sweeps
	interval time.Duration
	logger   *zap.Logger
}

func New(service Sweeps, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval. Errors
// are logged and the loop keeps ticking; a transient database outage must
// not kill the sweeper.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Timeout sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Timeout sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.service.SweepTimeouts(ctx); err != nil {
				s.logger.Error("Timeout sweep failed", zap.Error(err))
			}
		}
	}
}
