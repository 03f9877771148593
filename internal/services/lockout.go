package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/config"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
)

// AccountRepository defines the account store operations the services need.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context, accountType string, limit, offset int) ([]*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	SetActive(ctx context.Context, id string, active bool) (*models.Account, error)
	RecordFailedAttempt(ctx context.Context, id string, threshold int, lockFor time.Duration) (*models.Account, error)
	ClearFailedAttempts(ctx context.Context, id string) (*models.Account, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// LockoutTracker is the per-account failed-attempt state machine. An account
// is Unlocked while failed_attempts < threshold; crossing the threshold locks
// it for the configured duration. Expired locks are cleared lazily, on the
// next recorded failure or success, never by a read.
type LockoutTracker struct {
	repo   AccountRepository
	config config.LockoutConfig
	logger *slog.Logger
}

func NewLockoutTracker(repo AccountRepository, cfg config.LockoutConfig, logger *slog.Logger) *LockoutTracker {
	return &LockoutTracker{
		repo:   repo,
		config: cfg,
		logger: logger,
	}
}

// RecordFailure applies one failed attempt and persists the new state.
// When a previous lock has expired the counter restarts at 1.
func (t *LockoutTracker) RecordFailure(ctx context.Context, account *models.Account) (*models.Account, error) {
	updated, err := t.repo.RecordFailedAttempt(ctx, account.ID, t.config.MaxFailedAttempts, t.config.LockoutDuration)
	if err != nil {
		return nil, err
	}

	if updated.IsLocked(time.Now()) && !account.IsLocked(time.Now()) {
		t.logger.Warn("account locked after repeated failures",
			slog.String("account_id", updated.ID),
			slog.Int("attempts", updated.FailedAttempts))
	}

	return updated, nil
}

// RecordSuccess resets the counter and lock. Idempotent: a clean account is
// not written again.
func (t *LockoutTracker) RecordSuccess(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.FailedAttempts == 0 && account.LockedUntil == nil {
		return account, nil
	}
	return t.repo.ClearFailedAttempts(ctx, account.ID)
}

// IsLocked is a pure read. It must run before any password comparison so a
// locked account never leaks whether the password matched.
func (t *LockoutTracker) IsLocked(account *models.Account) bool {
	return account.IsLocked(time.Now())
}

// RemainingLockHours returns the hours left on the lock, rounded up; 0 when
// the account is not locked.
func (t *LockoutTracker) RemainingLockHours(account *models.Account) int {
	if account.LockedUntil == nil {
		return 0
	}
	return remainingHours(*account.LockedUntil, time.Now())
}

// ForceUnlock unconditionally clears the lockout state, whatever it is.
// Backs the admin unlock endpoint.
func (t *LockoutTracker) ForceUnlock(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := t.repo.ClearFailedAttempts(ctx, accountID)
	if err != nil {
		return nil, err
	}

	t.logger.Info("account force-unlocked", slog.String("account_id", accountID))
	return account, nil
}

// AttemptsRemaining reports how many more failures the account can absorb
// before locking.
func (t *LockoutTracker) AttemptsRemaining(account *models.Account) int {
	remaining := t.config.MaxFailedAttempts - account.FailedAttempts
	if remaining < 0 {
		return 0
	}
	return remaining
}

func remainingHours(until, now time.Time) int {
	if !until.After(now) {
		return 0
	}
	d := until.Sub(now)
	hours := int(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return hours
}
