package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	pkgauth "github.com/ajeetyadav200/sarkari-job-backend/pkg/auth"
	pkglogger "github.com/ajeetyadav200/sarkari-job-backend/pkg/logger"
)

// AccountService handles administrative account management: creation,
// activation, and lock moderation. All of it sits behind admin-only routes.
type AccountService struct {
	repo        AccountRepository
	lockout     *LockoutTracker
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAccountService(repo AccountRepository, lockout *LockoutTracker, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AccountService {
	return &AccountService{
		repo:        repo,
		lockout:     lockout,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// CreateAccountInput carries the admin-supplied fields for a new account.
type CreateAccountInput struct {
	Email       string
	Password    string
	Name        string
	AccountType string
	Role        string
}

// Create provisions a user or cyber-cafe account. Role must belong to the
// account type's closed set; the password faces the strength rules once,
// here, never again at login.
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput, createdBy string) (*models.Account, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	if input.Email == "" {
		return nil, fmt.Errorf("%w: email is required", models.ErrBadRequest)
	}
	if !models.ValidRole(input.AccountType, input.Role) {
		return nil, fmt.Errorf("%w: invalid role %q for account type %q", models.ErrBadRequest, input.Role, input.AccountType)
	}
	if err := pkgauth.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check for existing account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	account, err := s.repo.Create(ctx, &models.Account{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		AccountType:  input.AccountType,
		Role:         input.Role,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("account_created", account.ID, "", map[string]string{
		"created_by":   createdBy,
		"account_type": account.AccountType,
		"role":         account.Role,
	})

	return account, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// ToResponse projects an account for API responses; the credential field is
// never part of the projection.
func (s *AccountService) ToResponse(account *models.Account) *AccountResponse {
	return newAccountResponse(account, s.lockout)
}

func (s *AccountService) List(ctx context.Context, accountType string, limit, offset int) ([]*models.Account, error) {
	if accountType != models.AccountTypeUser && accountType != models.AccountTypeCyberCafe {
		return nil, fmt.Errorf("%w: unknown account type %q", models.ErrBadRequest, accountType)
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, accountType, limit, offset)
}

// Unlock clears an account's lockout state regardless of where it is in the
// state machine.
func (s *AccountService) Unlock(ctx context.Context, id, unlockedBy string) (*models.Account, error) {
	account, err := s.lockout.ForceUnlock(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditLogger.LogAccountAction("account_unlocked", id, "", map[string]string{
		"unlocked_by": unlockedBy,
	})

	return account, nil
}

// SetActive toggles the activation flag. A deactivated account cannot
// authenticate no matter what credentials it presents.
func (s *AccountService) SetActive(ctx context.Context, id string, active bool, changedBy string) (*models.Account, error) {
	account, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}

	action := "account_deactivated"
	if active {
		action = "account_activated"
	}
	s.auditLogger.LogAccountAction(action, id, "", map[string]string{
		"changed_by": changedBy,
	})

	return account, nil
}

func (s *AccountService) Delete(ctx context.Context, id, deletedBy string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditLogger.LogAccountAction("account_deleted", id, "", map[string]string{
		"deleted_by": deletedBy,
	})

	return nil
}
