package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/config"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
)

// IPAttemptRepository defines the per-address attempt store.
type IPAttemptRepository interface {
	GetByAddress(ctx context.Context, address string) (*models.IPAttemptRecord, error)
	IncrementAttempt(ctx context.Context, address string, threshold int, lockFor time.Duration) (*models.IPAttemptRecord, error)
	Reset(ctx context.Context, address string) error
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// IPAttemptTracker throttles failed logins per source address, independent of
// which account (or nonexistent email) was targeted. Per-account lockout
// alone cannot stop credential stuffing that rotates through many emails
// from one address.
//
// Unlike LockoutTracker, an expired lock here is cleared eagerly by the
// IsLocked read, not lazily on the next write.
type IPAttemptTracker struct {
	repo   IPAttemptRepository
	config config.LockoutConfig
	logger *slog.Logger
}

func NewIPAttemptTracker(repo IPAttemptRepository, cfg config.LockoutConfig, logger *slog.Logger) *IPAttemptTracker {
	return &IPAttemptTracker{
		repo:   repo,
		config: cfg,
		logger: logger,
	}
}

// IsLocked reports whether the address is currently locked. A lock whose
// window has passed is reset in place before reporting unlocked.
func (t *IPAttemptTracker) IsLocked(ctx context.Context, address string) (bool, error) {
	record, err := t.repo.GetByAddress(ctx, address)
	if err != nil {
		return false, err
	}
	if record == nil || !record.IsLocked {
		return false, nil
	}

	if record.LockExpired(time.Now()) {
		if err := t.repo.Reset(ctx, address); err != nil {
			return false, err
		}
		return false, nil
	}

	return true, nil
}

// RecordFailure finds-or-creates the record for the address and applies one
// failure, locking at the threshold.
func (t *IPAttemptTracker) RecordFailure(ctx context.Context, address string) (*models.IPAttemptRecord, error) {
	record, err := t.repo.IncrementAttempt(ctx, address, t.config.IPMaxFailedAttempts, t.config.IPLockoutDuration)
	if err != nil {
		return nil, err
	}

	if record.IsLocked {
		t.logger.Warn("source address locked after repeated failures",
			slog.String("ip_address", address),
			slog.Int("attempts", record.Attempts))
	}

	return record, nil
}

// Reset clears the address record after a successful login. No-op when the
// address has never failed.
func (t *IPAttemptTracker) Reset(ctx context.Context, address string) error {
	return t.repo.Reset(ctx, address)
}

// RetryAfterHours is the hint surfaced with an address-level rejection.
func (t *IPAttemptTracker) RetryAfterHours() int {
	return int(t.config.IPLockoutDuration.Hours())
}
