package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccount_IsLocked(t *testing.T) {
	now := time.Now()
	account := &Account{}

	assert.False(t, account.IsLocked(now), "no lock applied")

	future := now.Add(2 * time.Hour)
	account.LockedUntil = &future
	assert.True(t, account.IsLocked(now), "lock window still open")

	past := now.Add(-1 * time.Second)
	account.LockedUntil = &past
	assert.False(t, account.IsLocked(now), "expired lock reads as unlocked")

	// Exactly at the boundary the lock is over.
	account.LockedUntil = &now
	assert.False(t, account.IsLocked(now))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(AccountTypeUser, RoleAdmin))
	assert.True(t, ValidRole(AccountTypeUser, RoleAssistant))
	assert.True(t, ValidRole(AccountTypeUser, RolePublisher))
	assert.False(t, ValidRole(AccountTypeUser, RoleOperator))

	assert.True(t, ValidRole(AccountTypeCyberCafe, RoleOperator))
	assert.False(t, ValidRole(AccountTypeCyberCafe, RoleAdmin))

	assert.False(t, ValidRole("robot", RoleAdmin))
	assert.False(t, ValidRole(AccountTypeUser, ""))
}

func TestIPAttemptRecord_LockExpired(t *testing.T) {
	now := time.Now()
	record := &IPAttemptRecord{}

	assert.False(t, record.LockExpired(now), "no lock to expire")

	past := now.Add(-1 * time.Minute)
	record.IsLocked = true
	record.LockedUntil = &past
	assert.True(t, record.LockExpired(now))

	future := now.Add(1 * time.Minute)
	record.LockedUntil = &future
	assert.False(t, record.LockExpired(now), "lock window still open")

	// A stale timestamp without the flag never counts as an expired lock.
	record.IsLocked = false
	record.LockedUntil = &past
	assert.False(t, record.LockExpired(now))
}
