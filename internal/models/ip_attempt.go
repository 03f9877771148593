package models

import "time"

// IPAttemptRecord tracks failed login attempts per source address,
// independent of which account (or nonexistent email) was targeted.
// Rows are created lazily on the first failure from an address.
type IPAttemptRecord struct {
	IPAddress   string     `db:"ip_address"`
	Attempts    int        `db:"attempts"`
	LastAttempt time.Time  `db:"last_attempt"`
	IsLocked    bool       `db:"is_locked"`
	LockedUntil *time.Time `db:"locked_until"`
}

// LockExpired reports whether a previously applied lock has run out.
func (r *IPAttemptRecord) LockExpired(now time.Time) bool {
	return r.IsLocked && r.LockedUntil != nil && !r.LockedUntil.After(now)
}
