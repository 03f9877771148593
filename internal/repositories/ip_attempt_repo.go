package repositories

import (
	"context"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/database"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IPAttemptRepository persists per-address failed-attempt records.
type IPAttemptRepository struct {
	pool *pgxpool.Pool
}

func NewIPAttemptRepository(db *database.DB) *IPAttemptRepository {
	return &IPAttemptRepository{pool: db.Pool}
}

// GetByAddress returns the record for an address, or (nil, nil) when the
// address has never failed a login.
func (r *IPAttemptRepository) GetByAddress(ctx context.Context, address string) (*models.IPAttemptRecord, error) {
	query := `
		SELECT ip_address, attempts, last_attempt, is_locked, locked_until
		FROM ip_login_attempts WHERE ip_address = $1
	`

	var record models.IPAttemptRecord
	err := r.pool.QueryRow(ctx, query, address).Scan(
		&record.IPAddress, &record.Attempts, &record.LastAttempt,
		&record.IsLocked, &record.LockedUntil,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &record, nil
}

// IncrementAttempt creates the record on first failure, otherwise bumps the
// counter, locking the address once the threshold is crossed. A previously
// expired lock restarts the count at 1. Single round trip, so concurrent
// failures from one address serialize on the row.
func (r *IPAttemptRepository) IncrementAttempt(ctx context.Context, address string, threshold int, lockFor time.Duration) (*models.IPAttemptRecord, error) {
	query := `
		INSERT INTO ip_login_attempts (ip_address, attempts, last_attempt, is_locked, locked_until)
		VALUES ($1, 1, NOW(), 1 >= $2, CASE WHEN 1 >= $2 THEN NOW() + $3 ELSE NULL END)
		ON CONFLICT (ip_address) DO UPDATE SET
			attempts = CASE
				WHEN ip_login_attempts.is_locked AND ip_login_attempts.locked_until <= NOW() THEN 1
				ELSE ip_login_attempts.attempts + 1
			END,
			is_locked = CASE
				WHEN ip_login_attempts.is_locked AND ip_login_attempts.locked_until <= NOW() THEN FALSE
				ELSE ip_login_attempts.attempts + 1 >= $2
			END,
			locked_until = CASE
				WHEN ip_login_attempts.is_locked AND ip_login_attempts.locked_until <= NOW() THEN NULL
				WHEN ip_login_attempts.attempts + 1 >= $2 THEN NOW() + $3
				ELSE ip_login_attempts.locked_until
			END,
			last_attempt = NOW()
		RETURNING ip_address, attempts, last_attempt, is_locked, locked_until
	`

	var record models.IPAttemptRecord
	err := r.pool.QueryRow(ctx, query, address, threshold, lockFor).Scan(
		&record.IPAddress, &record.Attempts, &record.LastAttempt,
		&record.IsLocked, &record.LockedUntil,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &record, nil
}

// Reset clears the counter and lock for an address. No-op when the address
// has no record.
func (r *IPAttemptRepository) Reset(ctx context.Context, address string) error {
	query := `
		UPDATE ip_login_attempts
		SET attempts = 0, is_locked = FALSE, locked_until = NULL
		WHERE ip_address = $1
	`

	_, err := r.pool.Exec(ctx, query, address)
	return database.MapPostgresError(err)
}

// DeleteStale drops records whose last attempt is older than the retention
// cutoff. Called by the background sweeper; never removes a live lock.
func (r *IPAttemptRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM ip_login_attempts
		WHERE last_attempt < $1
		  AND (locked_until IS NULL OR locked_until < NOW())
	`

	result, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
