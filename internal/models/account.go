package models

import (
	"time"
)

// Account types. User and cyber-cafe operator accounts share one schema and
// one lockout state machine; the type column only selects which role set applies.
const (
	AccountTypeUser      = "user"
	AccountTypeCyberCafe = "cybercafe"
)

// Roles for user accounts. Cyber-cafe accounts always carry RoleOperator.
const (
	RoleAdmin     = "admin"
	RoleAssistant = "assistant"
	RolePublisher = "publisher"
	RoleOperator  = "operator"
)

type Account struct {
	ID             string
	Email          string // stored lowercased and trimmed
	PasswordHash   string
	Name           string
	AccountType    string // "user" or "cybercafe"
	Role           string
	IsActive       bool
	FailedAttempts int
	LockedUntil    *time.Time // nil when no lock has been applied
	LastLoginAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLocked reports whether the account is currently under a lockout.
// An expired LockedUntil counts as unlocked; the stale row is only cleared
// on the next recorded failure or success.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// ValidRole reports whether role is allowed for the given account type.
func ValidRole(accountType, role string) bool {
	switch accountType {
	case AccountTypeUser:
		return role == RoleAdmin || role == RoleAssistant || role == RolePublisher
	case AccountTypeCyberCafe:
		return role == RoleOperator
	default:
		return false
	}
}
