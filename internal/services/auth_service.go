package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/auth"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/config"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	pkgauth "github.com/ajeetyadav200/sarkari-job-backend/pkg/auth"
	pkglogger "github.com/ajeetyadav200/sarkari-job-backend/pkg/logger"
)

// LockNotifier sends the account-locked security notice. Implemented by the
// SES email service; nil disables notification.
type LockNotifier interface {
	NotifyAccountLocked(ctx context.Context, email, name string, until time.Time) error
}

// AuthService orchestrates the login protocol: address throttle, account
// lookup, activation and lockout gates, password verification, token
// issuance.
type AuthService struct {
	accounts    AccountRepository
	lockout     *LockoutTracker
	ipTracker   *IPAttemptTracker
	tokens      *auth.TokenManager
	timing      *auth.TimingDelay
	notifier    LockNotifier
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	config      config.LockoutConfig
}

func NewAuthService(
	accounts AccountRepository,
	lockout *LockoutTracker,
	ipTracker *IPAttemptTracker,
	tokens *auth.TokenManager,
	timing *auth.TimingDelay,
	notifier LockNotifier,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	cfg config.LockoutConfig,
) *AuthService {
	return &AuthService{
		accounts:    accounts,
		lockout:     lockout,
		ipTracker:   ipTracker,
		tokens:      tokens,
		timing:      timing,
		notifier:    notifier,
		logger:      logger,
		auditLogger: auditLogger,
		config:      cfg,
	}
}

// AccountResponse is the safe projection returned to callers. The stored
// credential never appears here.
type AccountResponse struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	Name              string  `json:"name"`
	AccountType       string  `json:"account_type"`
	Role              string  `json:"role"`
	IsActive          bool    `json:"is_active"`
	LastLoginAt       *string `json:"last_login_at"`
	AttemptsRemaining int     `json:"attempts_remaining"`
	IsLocked          bool    `json:"is_locked"`
}

// LoginResult is the artifact of a successful login.
type LoginResult struct {
	Token   string           `json:"token"`
	Account *AccountResponse `json:"account"`
}

// Login runs the ordered gates of the login protocol. Every gate fails
// closed with the most specific error kind; store and signer failures are
// downgraded to ErrInternalServer with details only in the server log.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress string) (*LoginResult, error) {
	start := time.Now()
	success := false
	if s.timing != nil {
		defer func() { s.timing.WaitFrom(start, success) }()
	}

	// Gate 1: structurally complete input
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || ipAddress == "" {
		return nil, models.ErrBadRequest
	}

	// Gate 2: source address throttle, before any account lookup
	ipLocked, err := s.ipTracker.IsLocked(ctx, ipAddress)
	if err != nil {
		s.logger.Error("failed to check address lock", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if ipLocked {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			IPAddress:     ipAddress,
			FailureReason: "ip_locked",
		})
		return nil, &models.LockedError{Scope: models.LockScopeIP, RetryAfterHours: s.ipTracker.RetryAfterHours()}
	}

	// Gate 3: account lookup. Unknown emails feed the address tracker only,
	// and the response is indistinguishable from a wrong password.
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			if _, ipErr := s.ipTracker.RecordFailure(ctx, ipAddress); ipErr != nil {
				s.logger.Error("failed to record address attempt", slog.Any("error", ipErr))
			}
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				IPAddress:     ipAddress,
				FailureReason: "unknown_email",
			})
			return nil, &models.InvalidCredentialsError{AttemptsRemaining: -1}
		}
		s.logger.Error("failed to get account by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Gate 4: activation flag. Credentials were never checked, so neither
	// tracker is touched.
	if !account.IsActive {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AccountID:     account.ID,
			IPAddress:     ipAddress,
			FailureReason: "account_deactivated",
		})
		return nil, models.ErrAccountDeactivated
	}

	// Gate 5: account lockout, checked before the password comparison so a
	// locked account never leaks whether the password matched.
	if s.lockout.IsLocked(account) {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			AccountID:     account.ID,
			IPAddress:     ipAddress,
			FailureReason: "account_locked",
		})
		return nil, &models.LockedError{
			Scope:           models.LockScopeAccount,
			RetryAfterHours: s.lockout.RemainingLockHours(account),
		}
	}

	// Gate 6: credential verification
	if err := pkgauth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, s.handleWrongPassword(ctx, account, ipAddress)
	}

	updated, err := s.lockout.RecordSuccess(ctx, account)
	if err != nil {
		s.logger.Error("failed to reset account attempts", slog.String("account_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.ipTracker.Reset(ctx, ipAddress); err != nil {
		// Best effort: the login already succeeded, a stale address counter
		// only costs headroom on the next failure.
		s.logger.Error("failed to reset address attempts", slog.Any("error", err))
	}

	now := time.Now()
	if err := s.accounts.TouchLastLogin(ctx, updated.ID, now); err != nil {
		s.logger.Error("failed to update last login", slog.String("account_id", updated.ID), slog.Any("error", err))
	}
	updated.LastLoginAt = &now

	token, err := s.tokens.Generate(updated)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("account_id", updated.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		AccountID: updated.ID,
		IPAddress: ipAddress,
		Success:   true,
	})

	success = true
	return &LoginResult{
		Token:   token,
		Account: s.accountToResponse(updated),
	}, nil
}

// handleWrongPassword records the failure on both trackers and picks the
// outcome: attempts remaining, or a fresh lock. The address tracker is also
// fed on wrong passwords, matching the per-address throttle's purpose of
// counting every failure from a source.
func (s *AuthService) handleWrongPassword(ctx context.Context, account *models.Account, ipAddress string) error {
	updated, err := s.lockout.RecordFailure(ctx, account)
	if err != nil {
		s.logger.Error("failed to record account attempt", slog.String("account_id", account.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if _, ipErr := s.ipTracker.RecordFailure(ctx, ipAddress); ipErr != nil {
		s.logger.Error("failed to record address attempt", slog.Any("error", ipErr))
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		AccountID:     account.ID,
		IPAddress:     ipAddress,
		FailureReason: "wrong_password",
	})

	if updated.IsLocked(time.Now()) {
		s.notifyLocked(updated)
		return &models.LockedError{
			Scope:           models.LockScopeAccount,
			RetryAfterHours: s.lockout.RemainingLockHours(updated),
		}
	}

	return &models.InvalidCredentialsError{
		AttemptsRemaining: s.lockout.AttemptsRemaining(updated),
	}
}

// notifyLocked fires the security notice without blocking the login
// response; a failed email never changes the auth outcome.
func (s *AuthService) notifyLocked(account *models.Account) {
	if s.notifier == nil || account.LockedUntil == nil {
		return
	}

	email, name, until := account.Email, account.Name, *account.LockedUntil
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.notifier.NotifyAccountLocked(ctx, email, name, until); err != nil {
			s.logger.Error("failed to send lock notification", slog.Any("error", err))
		}
	}()
}

// Me returns the safe projection for the authenticated account.
func (s *AuthService) Me(ctx context.Context, accountID string) (*AccountResponse, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get account", slog.String("account_id", accountID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return s.accountToResponse(account), nil
}

func (s *AuthService) accountToResponse(account *models.Account) *AccountResponse {
	return newAccountResponse(account, s.lockout)
}

func newAccountResponse(account *models.Account, lockout *LockoutTracker) *AccountResponse {
	var lastLogin *string
	if account.LastLoginAt != nil {
		formatted := account.LastLoginAt.UTC().Format(time.RFC3339)
		lastLogin = &formatted
	}

	return &AccountResponse{
		ID:                account.ID,
		Email:             account.Email,
		Name:              account.Name,
		AccountType:       account.AccountType,
		Role:              account.Role,
		IsActive:          account.IsActive,
		LastLoginAt:       lastLogin,
		AttemptsRemaining: lockout.AttemptsRemaining(account),
		IsLocked:          account.IsLocked(time.Now()),
	}
}
