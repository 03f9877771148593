package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIPTracker(repo IPAttemptRepository) *IPAttemptTracker {
	return NewIPAttemptTracker(repo, testLockoutConfig(), slog.Default())
}

func TestIPAttemptTracker_IsLocked_UnknownAddress(t *testing.T) {
	mockRepo := &MockIPAttemptRepository{
		GetByAddressFunc: func(ctx context.Context, address string) (*models.IPAttemptRecord, error) {
			return nil, nil
		},
	}

	tracker := newTestIPTracker(mockRepo)
	locked, err := tracker.IsLocked(context.Background(), "203.0.113.10")

	require.NoError(t, err)
	assert.False(t, locked)
}

func TestIPAttemptTracker_IsLocked_ActiveLock(t *testing.T) {
	lockedUntil := time.Now().Add(12 * time.Hour)
	mockRepo := &MockIPAttemptRepository{
		GetByAddressFunc: func(ctx context.Context, address string) (*models.IPAttemptRecord, error) {
			return &models.IPAttemptRecord{
				IPAddress:   address,
				Attempts:    3,
				LastAttempt: time.Now(),
				IsLocked:    true,
				LockedUntil: &lockedUntil,
			}, nil
		},
		ResetFunc: func(ctx context.Context, address string) error {
			t.Fatal("active lock must not be reset")
			return nil
		},
	}

	tracker := newTestIPTracker(mockRepo)
	locked, err := tracker.IsLocked(context.Background(), "203.0.113.10")

	require.NoError(t, err)
	assert.True(t, locked)
}

func TestIPAttemptTracker_IsLocked_ExpiredLockResetEagerly(t *testing.T) {
	lockedUntil := time.Now().Add(-1 * time.Minute)
	resetAddress := ""

	mockRepo := &MockIPAttemptRepository{
		GetByAddressFunc: func(ctx context.Context, address string) (*models.IPAttemptRecord, error) {
			return &models.IPAttemptRecord{
				IPAddress:   address,
				Attempts:    3,
				LastAttempt: time.Now().Add(-25 * time.Hour),
				IsLocked:    true,
				LockedUntil: &lockedUntil,
			}, nil
		},
		ResetFunc: func(ctx context.Context, address string) error {
			resetAddress = address
			return nil
		},
	}

	tracker := newTestIPTracker(mockRepo)
	locked, err := tracker.IsLocked(context.Background(), "203.0.113.10")

	require.NoError(t, err)
	assert.False(t, locked)
	assert.Equal(t, "203.0.113.10", resetAddress)
}

func TestIPAttemptTracker_IsLocked_ResetErrorPropagates(t *testing.T) {
	lockedUntil := time.Now().Add(-1 * time.Minute)
	mockRepo := &MockIPAttemptRepository{
		GetByAddressFunc: func(ctx context.Context, address string) (*models.IPAttemptRecord, error) {
			return &models.IPAttemptRecord{
				IPAddress:   address,
				IsLocked:    true,
				LockedUntil: &lockedUntil,
			}, nil
		},
		ResetFunc: func(ctx context.Context, address string) error {
			return models.ErrInternalServer
		},
	}

	tracker := newTestIPTracker(mockRepo)
	_, err := tracker.IsLocked(context.Background(), "203.0.113.10")
	assert.Error(t, err)
}

func TestIPAttemptTracker_RecordFailure_LocksAtThreshold(t *testing.T) {
	mockRepo := &MockIPAttemptRepository{
		IncrementAttemptFunc: func(ctx context.Context, address string, threshold int, lockFor time.Duration) (*models.IPAttemptRecord, error) {
			assert.Equal(t, 3, threshold)
			assert.Equal(t, 24*time.Hour, lockFor)

			lockedUntil := time.Now().Add(lockFor)
			return &models.IPAttemptRecord{
				IPAddress:   address,
				Attempts:    3,
				LastAttempt: time.Now(),
				IsLocked:    true,
				LockedUntil: &lockedUntil,
			}, nil
		},
	}

	tracker := newTestIPTracker(mockRepo)
	record, err := tracker.RecordFailure(context.Background(), "203.0.113.10")

	require.NoError(t, err)
	assert.True(t, record.IsLocked)
	assert.Equal(t, 3, record.Attempts)
}

func TestIPAttemptTracker_Reset(t *testing.T) {
	resetAddress := ""
	mockRepo := &MockIPAttemptRepository{
		ResetFunc: func(ctx context.Context, address string) error {
			resetAddress = address
			return nil
		},
	}

	tracker := newTestIPTracker(mockRepo)
	err := tracker.Reset(context.Background(), "203.0.113.10")

	require.NoError(t, err)
	assert.Equal(t, "203.0.113.10", resetAddress)
}

func TestIPAttemptTracker_RetryAfterHours(t *testing.T) {
	tracker := newTestIPTracker(&MockIPAttemptRepository{})
	assert.Equal(t, 24, tracker.RetryAfterHours())
}
