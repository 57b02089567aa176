package totals

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotals(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT total_locked::text FROM ledger_totals`).
		WillReturnRows(sqlmock.NewRows([]string{"total_locked"}).AddRow("1000"))
	v, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), v)

	mock.ExpectQuery(`UPDATE ledger_totals SET total_locked = total_locked \+ \$1::numeric - \$2::numeric`).
		WithArgs("0", "55").
		WillReturnRows(sqlmock.NewRows([]string{"total_locked"}).AddRow("945"))
	v, err = repo.Add(ctx, 0, 55)
	require.NoError(t, err)
	assert.Equal(t, uint64(945), v)

	mock.ExpectExec(`UPDATE ledger_totals SET total_locked = \$1`).
		WithArgs("7").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Set(ctx, 7))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTotals_Errors(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(`ledger_totals`).WillReturnError(errors.New("down"))
	_, err = repo.Get(context.Background())
	assert.ErrorContains(t, err, "db error")

	mock.ExpectQuery(`ledger_totals`).
		WillReturnRows(sqlmock.NewRows([]string{"total_locked"}).AddRow("-3"))
	_, err = repo.Add(context.Background(), 0, 10)
	assert.Error(t, err)
}
