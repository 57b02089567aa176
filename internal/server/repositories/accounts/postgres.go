// Package accounts provides the PostgreSQL repository for ledger accounts.
// Amounts are NUMERIC(20,0) columns carried as decimal strings so the full
// uint64 range survives the round trip.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/dbx"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/dmitrijs2005/phoenixlocker/internal/vesting"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `address, principal::text, withdrawn::text, deposited_at,
		last_daily_claim, last_weekly_claim, last_monthly_claim`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a                    models.Account
		principal, withdrawn string
	)
	err := row.Scan(&a.Address, &principal, &withdrawn, &a.DepositedAt,
		&a.LastClaim[vesting.Daily], &a.LastClaim[vesting.Weekly], &a.LastClaim[vesting.Monthly])
	if err != nil {
		return nil, err
	}
	if a.Principal, err = strconv.ParseUint(principal, 10, 64); err != nil {
		return nil, fmt.Errorf("principal of %s: %w", a.Address, err)
	}
	if a.Withdrawn, err = strconv.ParseUint(withdrawn, 10, 64); err != nil {
		return nil, fmt.Errorf("withdrawn of %s: %w", a.Address, err)
	}
	return &a, nil
}

// Lock takes a session-level advisory lock on address. It serializes writers
// even when the account row does not exist yet, and it outlives a COMMIT so
// a payout and its compensation stay under the same lock. The repository
// must be bound to a pinned *sql.Conn.
func (r *PostgresRepository) Lock(ctx context.Context, address string) error {
	query := `SELECT pg_advisory_lock(hashtext($1))`
	if _, err := r.db.ExecContext(ctx, query, address); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Unlock releases the lock taken by Lock on the same connection.
func (r *PostgresRepository) Unlock(ctx context.Context, address string) error {
	query := `SELECT pg_advisory_unlock(hashtext($1))`
	if _, err := r.db.ExecContext(ctx, query, address); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetForUpdate loads the account and row-locks it until the transaction ends.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, address string) (*models.Account, error) {
	return r.get(ctx, `SELECT `+selectColumns+` FROM accounts WHERE address = $1 FOR UPDATE`, address)
}

// Get loads the account, or returns common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, address string) (*models.Account, error) {
	return r.get(ctx, `SELECT `+selectColumns+` FROM accounts WHERE address = $1`, address)
}

func (r *PostgresRepository) get(ctx context.Context, query, address string) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// Create inserts a new account. Its sequence number fixes the position of
// the address in the depositor registry.
func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (address, principal, withdrawn, deposited_at,
			last_daily_claim, last_weekly_claim, last_monthly_claim)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.Address, strconv.FormatUint(a.Principal, 10), strconv.FormatUint(a.Withdrawn, 10), a.DepositedAt,
		a.LastClaim[vesting.Daily], a.LastClaim[vesting.Weekly], a.LastClaim[vesting.Monthly])
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of an existing account.
func (r *PostgresRepository) Update(ctx context.Context, a *models.Account) error {
	query := `
		UPDATE accounts SET principal = $2, withdrawn = $3,
			last_daily_claim = $4, last_weekly_claim = $5, last_monthly_claim = $6
		WHERE address = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		a.Address, strconv.FormatUint(a.Principal, 10), strconv.FormatUint(a.Withdrawn, 10),
		a.LastClaim[vesting.Daily], a.LastClaim[vesting.Weekly], a.LastClaim[vesting.Monthly])
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return common.ErrorNotFound
	}
	return nil
}

// List returns every account in registry order.
func (r *PostgresRepository) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM accounts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Addresses returns the depositor registry: every address that ever
// deposited, in first-deposit order.
func (r *PostgresRepository) Addresses(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT address FROM accounts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
