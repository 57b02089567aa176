package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountCols = []string{"address", "principal", "withdrawn", "deposited_at",
	"last_daily_claim", "last_weekly_claim", "last_monthly_claim"}

func newPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db, repomanager.NewPostgresRepositoryManager(), clockwork.NewFakeClockAt(t0)), mock
}

func TestPostgresStore_ApplyNewAccount(t *testing.T) {
	s, mock := newPostgresStore(t)

	mock.ExpectExec(`SELECT pg_advisory_lock`).WithArgs(alice).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM accounts WHERE address = \$1 FOR UPDATE`).WithArgs(alice).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs(alice, "1000", "0", t0, t0, t0, t0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO transactions`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`UPDATE ledger_totals`).
		WithArgs("1000", "0").
		WillReturnRows(sqlmock.NewRows([]string{"total_locked"}).AddRow("1500"))
	mock.ExpectCommit()
	mock.ExpectExec(`SELECT pg_advisory_unlock`).WithArgs(alice).WillReturnResult(sqlmock.NewResult(0, 0))

	var settled models.Transaction
	res, err := s.Apply(context.Background(), alice, depositOp(1000, t0),
		func(_ context.Context, tx models.Transaction) error { settled = tx; return nil })
	require.NoError(t, err)
	assert.Equal(t, uint64(1500), res.TotalLocked)
	assert.Equal(t, uint64(1000), settled.Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DepositPullFailsRollsBack(t *testing.T) {
	s, mock := newPostgresStore(t)

	mock.ExpectExec(`SELECT pg_advisory_lock`).WithArgs(alice).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(alice).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO accounts`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO transactions`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`UPDATE ledger_totals`).
		WillReturnRows(sqlmock.NewRows([]string{"total_locked"}).AddRow("1000"))
	mock.ExpectRollback()
	mock.ExpectExec(`SELECT pg_advisory_unlock`).WithArgs(alice).WillReturnResult(sqlmock.NewResult(0, 0))

	boom := errors.New("allowance too low")
	_, err := s.Apply(context.Background(), alice, depositOp(1000, t0),
		func(context.Context, models.Transaction) error { return boom })
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

// expectCommittedEmergency queues the lock and the committed withdrawal of
// alice's whole 1000 principal.
func expectCommittedEmergency(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`SELECT pg_advisory_lock`).WithArgs(alice).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(alice).
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(alice, "1000", "0", t0, t0, t0, t0))
	mock.ExpectExec(`UPDATE accounts`).
		WithArgs(alice, "1000", "1000", t0, t0, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO transactions`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`UPDATE ledger_totals`).
		WithArgs("0", "1000").
		WillReturnRows(sqlmock.NewRows([]string{"total_locked"}).AddRow("0"))
	mock.ExpectCommit()
}

func TestPostgresStore_WithdrawalCommitsBeforePayout(t *testing.T) {
	s, mock := newPostgresStore(t)
	expectCommittedEmergency(mock)
	mock.ExpectExec(`SELECT pg_advisory_unlock`).WithArgs(alice).WillReturnResult(sqlmock.NewResult(0, 0))

	paid := 0
	res, err := s.Apply(context.Background(), alice, emergencyOp(t0),
		func(context.Context, models.Transaction) error { paid++; return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, paid)
	assert.Equal(t, uint64(1000), res.Account.Withdrawn)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WithdrawalCommitFailsNeverPays(t *testing.T) {
	s, mock := newPostgresStore(t)

	mock.ExpectExec(`SELECT pg_advisory_lock`).WithArgs(alice).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(alice).
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(alice, "1000", "0", t0, t0, t0, t0))
	mock.ExpectExec(`UPDATE accounts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO transactions`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`UPDATE ledger_totals`).
		WillReturnRows(sqlmock.NewRows([]string{"total_locked"}).AddRow("0"))
	mock.ExpectCommit().WillReturnError(errors.New("connection lost"))
	mock.ExpectExec(`SELECT pg_advisory_unlock`).WithArgs(alice).WillReturnResult(sqlmock.NewResult(0, 0))

	paid := false
	_, err := s.Apply(context.Background(), alice, emergencyOp(t0),
		func(context.Context, models.Transaction) error { paid = true; return nil })
	require.ErrorContains(t, err, "connection lost")
	assert.False(t, paid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WithdrawalPayoutFailsReverts(t *testing.T) {
	s, mock := newPostgresStore(t)
	expectCommittedEmergency(mock)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts`).
		WithArgs(alice, "1000", "0", t0, t0, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM transactions WHERE id = \$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE ledger_totals`).
		WithArgs("1000", "0").
		WillReturnRows(sqlmock.NewRows([]string{"total_locked"}).AddRow("1000"))
	mock.ExpectCommit()
	mock.ExpectExec(`SELECT pg_advisory_unlock`).WithArgs(alice).WillReturnResult(sqlmock.NewResult(0, 0))

	boom := errors.New("payout failed")
	_, err := s.Apply(context.Background(), alice, emergencyOp(t0),
		func(context.Context, models.Transaction) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, common.ErrInconsistentState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WithdrawalRevertFails(t *testing.T) {
	s, mock := newPostgresStore(t)
	expectCommittedEmergency(mock)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM transactions`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()
	mock.ExpectExec(`SELECT pg_advisory_unlock`).WithArgs(alice).WillReturnResult(sqlmock.NewResult(0, 0))

	boom := errors.New("payout failed")
	_, err := s.Apply(context.Background(), alice, emergencyOp(t0),
		func(context.Context, models.Transaction) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, common.ErrInconsistentState)
	assert.ErrorContains(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ApplyRejectsBeforeWriting(t *testing.T) {
	s, mock := newPostgresStore(t)

	mock.ExpectExec(`SELECT pg_advisory_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()
	mock.ExpectExec(`SELECT pg_advisory_unlock`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.Apply(context.Background(), alice,
		func(models.Account) (models.Account, models.Transaction, error) {
			return models.Account{}, models.Transaction{}, common.ErrInvalidAmount
		}, okSettle)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Views(t *testing.T) {
	s, mock := newPostgresStore(t)
	ctx := context.Background()

	mock.ExpectQuery(`FROM accounts WHERE address = \$1`).WithArgs(bob).WillReturnError(sql.ErrNoRows)
	_, err := s.Account(ctx, bob)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectQuery(`SELECT address FROM accounts ORDER BY seq`).
		WillReturnRows(sqlmock.NewRows([]string{"address"}).AddRow(alice))
	deps, err := s.Depositors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{alice}, deps)

	mock.ExpectQuery(`SELECT total_locked::text`).
		WillReturnRows(sqlmock.NewRows([]string{"total_locked"}).AddRow("42"))
	total, err := s.TotalLocked(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Snapshot(t *testing.T) {
	s, mock := newPostgresStore(t)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT total_locked::text`).
		WillReturnRows(sqlmock.NewRows([]string{"total_locked"}).AddRow("1000"))
	mock.ExpectQuery(`FROM accounts ORDER BY seq`).
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(alice, "1000", "0", t0, t0, t0, t0))
	mock.ExpectQuery(`FROM transactions ORDER BY seq`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "address", "kind", "amount", "cadence", "created_at"}).
			AddRow(id.String(), alice, "deposit", "1000", nil, t0))
	mock.ExpectCommit()

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, t0, snap.TakenAt)
	assert.Equal(t, []string{alice}, snap.Depositors)
	require.Len(t, snap.Transactions[alice], 1)
	assert.NoError(t, verifySnapshot(snap))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Close(t *testing.T) {
	s, mock := newPostgresStore(t)
	mock.ExpectClose()
	require.NoError(t, s.Close())
}
