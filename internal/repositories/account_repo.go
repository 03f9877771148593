package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ajeetyadav200/sarkari-job-backend/internal/database"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, email, password_hash, name, account_type, role, is_active,
	failed_attempts, locked_until, last_login_at, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{pool: db.Pool}
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var account models.Account
	var lockedUntil, lastLoginAt *time.Time

	err := scanner.Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.Name,
		&account.AccountType, &account.Role, &account.IsActive,
		&account.FailedAttempts, &lockedUntil, &lastLoginAt,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	account.LockedUntil = lockedUntil
	account.LastLoginAt = lastLoginAt

	return &account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	return scanAccountRow(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail looks up an account by normalized email. The caller is expected
// to have lowercased and trimmed it already; the index is on LOWER(email) so
// the comparison stays case-insensitive either way.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE LOWER(email) = LOWER($1)`, accountColumns)
	return scanAccountRow(r.pool.QueryRow(ctx, query, strings.TrimSpace(email)))
}

func (r *AccountRepository) List(ctx context.Context, accountType string, limit, offset int) ([]*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE account_type = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, accountColumns)

	rows, err := r.pool.Query(ctx, query, accountType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*models.Account, 0)
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	account.ID = uuid.New().String()
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO accounts (id, email, password_hash, name, account_type, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s`, accountColumns)

	return scanAccountRow(r.pool.QueryRow(ctx, query,
		account.ID, account.Email, account.PasswordHash, account.Name,
		account.AccountType, account.Role, account.IsActive,
		account.CreatedAt, account.UpdatedAt,
	))
}

// SetActive flips the activation flag; deactivated accounts cannot log in.
func (r *AccountRepository) SetActive(ctx context.Context, id string, active bool) (*models.Account, error) {
	query := fmt.Sprintf(`
		UPDATE accounts SET is_active = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING %s`, accountColumns)

	return scanAccountRow(r.pool.QueryRow(ctx, query, active, id))
}

// RecordFailedAttempt applies one failed login atomically: an expired lock is
// treated as a fresh start (attempts back to 1), otherwise the counter is
// incremented and the lock applied when it reaches the threshold. The
// increment happens inside a single UPDATE so two concurrent failures cannot
// lose a count.
func (r *AccountRepository) RecordFailedAttempt(ctx context.Context, id string, threshold int, lockFor time.Duration) (*models.Account, error) {
	query := fmt.Sprintf(`
		UPDATE accounts SET
			failed_attempts = CASE
				WHEN locked_until IS NOT NULL AND locked_until <= NOW() THEN 1
				ELSE failed_attempts + 1
			END,
			locked_until = CASE
				WHEN locked_until IS NOT NULL AND locked_until <= NOW() THEN NULL
				WHEN failed_attempts + 1 >= $2 THEN NOW() + $3
				ELSE locked_until
			END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, accountColumns)

	return scanAccountRow(r.pool.QueryRow(ctx, query, id, threshold, lockFor))
}

// ClearFailedAttempts resets the lockout state. Used on successful login and
// by the admin unlock action.
func (r *AccountRepository) ClearFailedAttempts(ctx context.Context, id string) (*models.Account, error) {
	query := fmt.Sprintf(`
		UPDATE accounts SET failed_attempts = 0, locked_until = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, accountColumns)

	return scanAccountRow(r.pool.QueryRow(ctx, query, id))
}

// TouchLastLogin stamps a successful authentication.
func (r *AccountRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE accounts SET last_login_at = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
