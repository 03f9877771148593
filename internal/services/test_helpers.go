package services

import (
	"context"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/config"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// MockAccountRepository implements AccountRepository for testing
type MockAccountRepository struct {
	GetByIDFunc             func(ctx context.Context, id string) (*models.Account, error)
	GetByEmailFunc          func(ctx context.Context, email string) (*models.Account, error)
	ListFunc                func(ctx context.Context, accountType string, limit, offset int) ([]*models.Account, error)
	CreateFunc              func(ctx context.Context, account *models.Account) (*models.Account, error)
	SetActiveFunc           func(ctx context.Context, id string, active bool) (*models.Account, error)
	RecordFailedAttemptFunc func(ctx context.Context, id string, threshold int, lockFor time.Duration) (*models.Account, error)
	ClearFailedAttemptsFunc func(ctx context.Context, id string) (*models.Account, error)
	TouchLastLoginFunc      func(ctx context.Context, id string, at time.Time) error
	DeleteFunc              func(ctx context.Context, id string) error
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) List(ctx context.Context, accountType string, limit, offset int) ([]*models.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, accountType, limit, offset)
	}
	return []*models.Account{}, nil
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool) (*models.Account, error) {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) RecordFailedAttempt(ctx context.Context, id string, threshold int, lockFor time.Duration) (*models.Account, error) {
	if m.RecordFailedAttemptFunc != nil {
		return m.RecordFailedAttemptFunc(ctx, id, threshold, lockFor)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) ClearFailedAttempts(ctx context.Context, id string) (*models.Account, error) {
	if m.ClearFailedAttemptsFunc != nil {
		return m.ClearFailedAttemptsFunc(ctx, id)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if m.TouchLastLoginFunc != nil {
		return m.TouchLastLoginFunc(ctx, id, at)
	}
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockIPAttemptRepository implements IPAttemptRepository for testing
type MockIPAttemptRepository struct {
	GetByAddressFunc     func(ctx context.Context, address string) (*models.IPAttemptRecord, error)
	IncrementAttemptFunc func(ctx context.Context, address string, threshold int, lockFor time.Duration) (*models.IPAttemptRecord, error)
	ResetFunc            func(ctx context.Context, address string) error
	DeleteStaleFunc      func(ctx context.Context, before time.Time) (int64, error)
}

func (m *MockIPAttemptRepository) GetByAddress(ctx context.Context, address string) (*models.IPAttemptRecord, error) {
	if m.GetByAddressFunc != nil {
		return m.GetByAddressFunc(ctx, address)
	}
	return nil, nil
}

func (m *MockIPAttemptRepository) IncrementAttempt(ctx context.Context, address string, threshold int, lockFor time.Duration) (*models.IPAttemptRecord, error) {
	if m.IncrementAttemptFunc != nil {
		return m.IncrementAttemptFunc(ctx, address, threshold, lockFor)
	}
	return &models.IPAttemptRecord{IPAddress: address, Attempts: 1, LastAttempt: time.Now()}, nil
}

func (m *MockIPAttemptRepository) Reset(ctx context.Context, address string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, address)
	}
	return nil
}

func (m *MockIPAttemptRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	if m.DeleteStaleFunc != nil {
		return m.DeleteStaleFunc(ctx, before)
	}
	return 0, nil
}

// NewTestAccount creates an active user account whose stored hash matches
// the given password. MinCost keeps the suite fast; verification accepts any
// cost.
func NewTestAccount(id, email, name, password string) *models.Account {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	now := time.Now()
	return &models.Account{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		AccountType:  models.AccountTypeUser,
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// testLockoutConfig mirrors the production defaults.
func testLockoutConfig() config.LockoutConfig {
	return config.LockoutConfig{
		MaxFailedAttempts:   3,
		LockoutDuration:     24 * time.Hour,
		IPMaxFailedAttempts: 3,
		IPLockoutDuration:   24 * time.Hour,
		AttemptRetention:    30 * 24 * time.Hour,
		RetentionInterval:   6 * time.Hour,
	}
}
