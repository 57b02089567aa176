package profile

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

var alice = &Profile{
	Address:  "0x00000000000000000000000000000000000000a1",
	Salt:     []byte{0x01, 0x02},
	Verifier: []byte{0x03, 0x04},
}

func TestLoad_Empty_ReturnsNotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	p, err := r.Load(context.Background())
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.Nil(t, p)
}

func TestSaveThenLoad(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, alice))

	p, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, alice, p)
}

func TestSave_Overwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, alice))
	bob := &Profile{Address: "0x00000000000000000000000000000000000000b0", Salt: []byte("s"), Verifier: []byte("v")}
	require.NoError(t, r.Save(ctx, bob))

	p, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, bob, p)
}

func TestLoad_PartialProfileIsAbsent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES ('address', 'x')`)
	require.NoError(t, err)

	_, err = r.Load(context.Background())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, alice))
	require.NoError(t, r.Clear(ctx))

	_, err := r.Load(ctx)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSave_InsideTransactionRollsBack(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := NewSQLiteRepository(tx).Save(ctx, alice); err != nil {
			return err
		}
		return sql.ErrTxDone
	})
	require.ErrorIs(t, err, sql.ErrTxDone)

	_, err = NewSQLiteRepository(db).Load(ctx)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, err := r.Load(ctx)
	require.ErrorContains(t, err, "failed to get metadata[address]")

	require.ErrorContains(t, r.Save(ctx, alice), "failed to set metadata[address]")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear metadata")
}
