package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/dbx"
)

const (
	keyAddress  = "address"
	keySalt     = "salt"
	keyVerifier = "verifier"
)

// SQLiteRepository keeps the profile as rows of the metadata key/value table.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

// Load reads the three profile keys. A partially written profile counts as
// absent.
func (r *SQLiteRepository) Load(ctx context.Context) (*Profile, error) {
	address, err := r.get(ctx, keyAddress)
	if err != nil {
		return nil, err
	}
	salt, err := r.get(ctx, keySalt)
	if err != nil {
		return nil, err
	}
	verifier, err := r.get(ctx, keyVerifier)
	if err != nil {
		return nil, err
	}
	return &Profile{Address: string(address), Salt: salt, Verifier: verifier}, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, p *Profile) error {
	if err := r.set(ctx, keyAddress, []byte(p.Address)); err != nil {
		return err
	}
	if err := r.set(ctx, keySalt, p.Salt); err != nil {
		return err
	}
	return r.set(ctx, keyVerifier, p.Verifier)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata`)
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}
