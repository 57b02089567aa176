// Package transactions stores the per-address history of deposits and
// withdrawals.
package transactions

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/dbx"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/dmitrijs2005/phoenixlocker/internal/vesting"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append writes a journal row. Rows are never updated.
func (r *PostgresRepository) Append(ctx context.Context, tx *models.Transaction) error {
	var cadence sql.NullString
	if tx.Cadence != nil {
		cadence = sql.NullString{String: tx.Cadence.String(), Valid: true}
	}

	query := `
		INSERT INTO transactions (id, address, kind, amount, cadence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		tx.ID.String(), tx.Address, string(tx.Kind), strconv.FormatUint(tx.Amount, 10), cadence, tx.Timestamp)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Remove deletes the row with id. Deleting an absent row is an error so a
// failed compensation is never mistaken for a successful one.
func (r *PostgresRepository) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id.String())
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

// ListByAddress returns the history of one address, oldest first.
func (r *PostgresRepository) ListByAddress(ctx context.Context, address string) ([]models.Transaction, error) {
	query := `
		SELECT id, address, kind, amount::text, cadence, created_at
		FROM transactions WHERE address = $1 ORDER BY seq
	`
	return r.list(ctx, query, address)
}

// ListAll returns the full journal in insertion order.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]models.Transaction, error) {
	query := `SELECT id, address, kind, amount::text, cadence, created_at FROM transactions ORDER BY seq`
	return r.list(ctx, query)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Transaction, 0)
	for rows.Next() {
		var (
			t       models.Transaction
			id      string
			kind    string
			amount  string
			cadence sql.NullString
		)
		if err := rows.Scan(&id, &t.Address, &kind, &amount, &cadence, &t.Timestamp); err != nil {
			return nil, err
		}
		if t.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("transaction id %q: %w", id, err)
		}
		if t.Amount, err = strconv.ParseUint(amount, 10, 64); err != nil {
			return nil, fmt.Errorf("transaction %s amount: %w", id, err)
		}
		t.Kind = models.TransactionKind(kind)
		if cadence.Valid {
			c, err := vesting.ParseCadence(cadence.String)
			if err != nil {
				return nil, fmt.Errorf("transaction %s: %w", id, err)
			}
			t.Cadence = &c
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
