package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authentication outcome errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrIPLocked           = errors.New("too many attempts from this address")
)

// Lockout scopes for LockedError.
const (
	LockScopeAccount = "account"
	LockScopeIP      = "ip"
)

// LockedError reports a lockout with the hours remaining before retry.
// It unwraps to ErrAccountLocked or ErrIPLocked depending on scope so
// callers can keep using errors.Is.
type LockedError struct {
	Scope           string
	RetryAfterHours int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s locked, retry after %dh", e.Scope, e.RetryAfterHours)
}

func (e *LockedError) Unwrap() error {
	if e.Scope == LockScopeIP {
		return ErrIPLocked
	}
	return ErrAccountLocked
}

// InvalidCredentialsError carries the attempts remaining before the account
// locks. AttemptsRemaining is -1 when it is not derivable (unknown email),
// which keeps the response shape identical for unknown-email and
// wrong-password failures.
type InvalidCredentialsError struct {
	AttemptsRemaining int
}

func (e *InvalidCredentialsError) Error() string {
	return "invalid credentials"
}

func (e *InvalidCredentialsError) Unwrap() error {
	return ErrInvalidCredentials
}
