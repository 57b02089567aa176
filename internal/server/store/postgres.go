package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/dbx"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/repositories/repomanager"
	"github.com/jonboulle/clockwork"
)

// PostgresStore keeps the ledger in PostgreSQL.
//
// Apply pins one pooled connection and holds a session advisory lock on the
// address for the whole call. A deposit pulls tokens inside the transaction
// that records it, so a failed pull leaves nothing behind. A withdrawal is
// committed first and paid afterwards: a commit failure then never follows a
// payout. When the payout fails the committed rows are reverted in a second
// transaction on the same connection.
type PostgresStore struct {
	db    *sql.DB
	rm    repomanager.RepositoryManager
	clock clockwork.Clock
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wraps an open database whose schema is already migrated.
func NewPostgresStore(db *sql.DB, rm repomanager.RepositoryManager, clock clockwork.Clock) *PostgresStore {
	return &PostgresStore{db: db, rm: rm, clock: clock}
}

func (s *PostgresStore) Apply(ctx context.Context, address string, op Operation, settle Settlement) (*Result, error) {
	var res *Result
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn *sql.Conn) error {
		accounts := s.rm.Accounts(conn)
		if err := accounts.Lock(ctx, address); err != nil {
			return err
		}
		defer func() { _ = accounts.Unlock(context.WithoutCancel(ctx), address) }()

		var (
			current models.Account
			payout  bool
		)
		err := dbx.WithTx(ctx, conn, nil, func(ctx context.Context, tx dbx.DBTX) error {
			accounts := s.rm.Accounts(tx)
			exists := true
			cur, err := accounts.GetForUpdate(ctx, address)
			if errors.Is(err, common.ErrorNotFound) {
				exists = false
				cur = &models.Account{Address: address}
			} else if err != nil {
				return err
			}
			current = *cur

			next, t, err := op(current)
			if err != nil {
				return err
			}
			if err := verifyTransition(&current, &next, &t); err != nil {
				return err
			}

			if exists {
				err = accounts.Update(ctx, &next)
			} else {
				err = accounts.Create(ctx, &next)
			}
			if err != nil {
				return err
			}
			if err := s.rm.Transactions(tx).Append(ctx, &t); err != nil {
				return err
			}
			credit, debit := t.LockedDelta()
			total, err := s.rm.Totals(tx).Add(ctx, credit, debit)
			if err != nil {
				return err
			}

			res = &Result{Account: next, Transaction: t, TotalLocked: total}
			if t.IsDeposit() {
				return settle(ctx, t)
			}
			payout = true
			return nil
		})
		if err != nil || !payout {
			return err
		}

		if err := settle(ctx, res.Transaction); err != nil {
			if cerr := s.revert(ctx, conn, &current, &res.Transaction); cerr != nil {
				return errors.Join(err, fmt.Errorf("%w: revert %s: %w", common.ErrInconsistentState, res.Transaction.ID, cerr))
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// revert undoes a committed withdrawal whose payout failed. The advisory
// lock is still held, so nothing else touched the account in between.
func (s *PostgresStore) revert(ctx context.Context, conn *sql.Conn, prev *models.Account, t *models.Transaction) error {
	ctx = context.WithoutCancel(ctx)
	return dbx.WithTx(ctx, conn, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Accounts(tx).Update(ctx, prev); err != nil {
			return err
		}
		if err := s.rm.Transactions(tx).Remove(ctx, t.ID); err != nil {
			return err
		}
		credit, debit := t.LockedDelta()
		_, err := s.rm.Totals(tx).Add(ctx, debit, credit)
		return err
	})
}

func (s *PostgresStore) Account(ctx context.Context, address string) (*models.Account, error) {
	return s.rm.Accounts(s.db).Get(ctx, address)
}

func (s *PostgresStore) Transactions(ctx context.Context, address string) ([]models.Transaction, error) {
	return s.rm.Transactions(s.db).ListByAddress(ctx, address)
}

func (s *PostgresStore) Depositors(ctx context.Context) ([]string, error) {
	return s.rm.Accounts(s.db).Addresses(ctx)
}

func (s *PostgresStore) TotalLocked(ctx context.Context) (uint64, error) {
	return s.rm.Totals(s.db).Get(ctx)
}

// Snapshot reads every table inside one repeatable-read transaction so the
// result is consistent.
func (s *PostgresStore) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{TakenAt: s.clock.Now().UTC()}
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

	err := dbx.WithTx(ctx, s.db, opts, func(ctx context.Context, tx dbx.DBTX) error {
		total, err := s.rm.Totals(tx).Get(ctx)
		if err != nil {
			return err
		}
		accounts, err := s.rm.Accounts(tx).List(ctx)
		if err != nil {
			return err
		}
		history, err := s.rm.Transactions(tx).ListAll(ctx)
		if err != nil {
			return err
		}

		snap.TotalLocked = total
		snap.Accounts = accounts
		snap.Depositors = make([]string, 0, len(accounts))
		for _, a := range accounts {
			snap.Depositors = append(snap.Depositors, a.Address)
		}
		snap.Transactions = make(map[string][]models.Transaction, len(accounts))
		for _, t := range history {
			snap.Transactions[t.Address] = append(snap.Transactions[t.Address], t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
