// Package totals stores the single-row running total of locked funds.
package totals

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/phoenixlocker/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context) (uint64, error) {
	return r.scan(r.db.QueryRowContext(ctx, `SELECT total_locked::text FROM ledger_totals WHERE id = 1`))
}

// Add applies credit and debit in one statement and returns the new total.
// The row is locked by the UPDATE until the enclosing transaction ends.
func (r *PostgresRepository) Add(ctx context.Context, credit, debit uint64) (uint64, error) {
	query := `
		UPDATE ledger_totals SET total_locked = total_locked + $1::numeric - $2::numeric
		WHERE id = 1
		RETURNING total_locked::text
	`
	return r.scan(r.db.QueryRowContext(ctx, query,
		strconv.FormatUint(credit, 10), strconv.FormatUint(debit, 10)))
}

// Set overwrites the total. Used when restoring a snapshot.
func (r *PostgresRepository) Set(ctx context.Context, total uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE ledger_totals SET total_locked = $1 WHERE id = 1`,
		strconv.FormatUint(total, 10))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scan(row scanner) (uint64, error) {
	var s string
	if err := row.Scan(&s); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("total_locked %q: %w", s, err)
	}
	return v, nil
}
