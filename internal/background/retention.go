package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/services"
)

// RetentionSweeper periodically deletes IP attempt records that have gone
// quiet past the retention window. Live locks are never removed; the lockout
// logic itself does not expire rows, this is storage hygiene only.
type RetentionSweeper struct {
	repo      services.IPAttemptRepository
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	stopCh    chan struct{}
}

func NewRetentionSweeper(repo services.IPAttemptRepository, retention, interval time.Duration, logger *slog.Logger) *RetentionSweeper {
	return &RetentionSweeper{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is called.
func (s *RetentionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once on startup
	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopCh:
			s.logger.Info("retention sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("retention sweeper context cancelled")
			return
		}
	}
}

func (s *RetentionSweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)
	deleted, err := s.repo.DeleteStale(sweepCtx, cutoff)
	if err != nil {
		s.logger.Error("failed to sweep stale attempt records", slog.Any("error", err))
		return
	}

	if deleted > 0 {
		s.logger.Info("stale attempt records removed", slog.Int64("rows_deleted", deleted))
	}
}

// Stop signals the sweeper to stop
func (s *RetentionSweeper) Stop() {
	close(s.stopCh)
}
