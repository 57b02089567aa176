// Package store holds ledger state behind one contract shared by the
// in-memory and PostgreSQL backends.
//
// Every mutation goes through Apply, which serializes writers per address,
// stages the new account state and runs the token settlement. A mutation
// whose settlement fails leaves no trace in the ledger. The running total of
// locked funds is updated in the same atomic unit as the account.
package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
)

// Operation computes the next state of an account from the current one,
// together with the journal entry describing the change. It must not have
// side effects: it runs while the address lock is held and its result may be
// discarded. Reading the clock inside it is fine and timestamps the change at
// the moment the lock was won. An absent account is passed as the zero
// Account with Address set.
type Operation func(current models.Account) (next models.Account, tx models.Transaction, err error)

// Settlement moves tokens for a staged transaction. When it fails Apply
// returns its error and the ledger is left as it was. It is called at most
// once per Apply.
type Settlement func(ctx context.Context, tx models.Transaction) error

// Result is the committed outcome of Apply.
type Result struct {
	Account     models.Account
	Transaction models.Transaction
	TotalLocked uint64
}

// Store is the ledger persistence contract.
type Store interface {
	Apply(ctx context.Context, address string, op Operation, settle Settlement) (*Result, error)
	// Account returns common.ErrorNotFound for an address that never deposited.
	Account(ctx context.Context, address string) (*models.Account, error)
	Transactions(ctx context.Context, address string) ([]models.Transaction, error)
	Depositors(ctx context.Context) ([]string, error)
	TotalLocked(ctx context.Context) (uint64, error)
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	Close() error
}

// verifyTransition rejects an operation result that would break a ledger
// invariant. It runs before anything is staged.
func verifyTransition(prev, next *models.Account, tx *models.Transaction) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", common.ErrInconsistentState, prev.Address, fmt.Sprintf(format, args...))
	}

	if next.Address != prev.Address || tx.Address != prev.Address {
		return fail("address changed")
	}
	if tx.Amount == 0 {
		return fail("zero amount transaction")
	}
	if next.Withdrawn > next.Principal {
		return fail("withdrawn %d exceeds principal %d", next.Withdrawn, next.Principal)
	}
	if !next.Exists() {
		return fail("account without deposit time")
	}
	for i := range next.LastClaim {
		if next.LastClaim[i].Before(prev.LastClaim[i]) {
			return fail("last claim moved backwards")
		}
	}

	switch tx.Kind {
	case models.KindDeposit:
		if next.Principal < prev.Principal || next.Principal-prev.Principal != tx.Amount || next.Withdrawn != prev.Withdrawn {
			return fail("deposit of %d does not match principal change", tx.Amount)
		}
	case models.KindWithdrawal, models.KindEmergency:
		if next.Withdrawn < prev.Withdrawn || next.Withdrawn-prev.Withdrawn != tx.Amount || next.Principal != prev.Principal {
			return fail("withdrawal of %d does not match withdrawn change", tx.Amount)
		}
	default:
		return fail("unknown transaction kind %q", tx.Kind)
	}
	return nil
}

// verifySnapshot checks the invariants a restored ledger must satisfy.
func verifySnapshot(s *models.Snapshot) error {
	var sum uint64
	seen := make(map[string]bool, len(s.Accounts))
	for i := range s.Accounts {
		a := &s.Accounts[i]
		if seen[a.Address] {
			return fmt.Errorf("%w: duplicate account %s", common.ErrInconsistentState, a.Address)
		}
		seen[a.Address] = true
		if err := verifyHistory(a, s.Transactions[a.Address]); err != nil {
			return err
		}
		sum += a.Remaining()
	}
	if sum != s.TotalLocked {
		return fmt.Errorf("%w: total locked %d, accounts hold %d", common.ErrInconsistentState, s.TotalLocked, sum)
	}
	if len(s.Depositors) != len(s.Accounts) {
		return fmt.Errorf("%w: %d depositors for %d accounts", common.ErrInconsistentState, len(s.Depositors), len(s.Accounts))
	}
	for _, d := range s.Depositors {
		if !seen[d] {
			return fmt.Errorf("%w: depositor %s has no account", common.ErrInconsistentState, d)
		}
	}
	return nil
}

// verifyHistory checks that the journal of a sums to its principal and
// withdrawn amounts.
func verifyHistory(a *models.Account, history []models.Transaction) error {
	if a.Withdrawn > a.Principal {
		return fmt.Errorf("%w: %s withdrawn %d exceeds principal %d", common.ErrInconsistentState, a.Address, a.Withdrawn, a.Principal)
	}
	var deposits, withdrawals uint64
	for _, t := range history {
		if t.IsDeposit() {
			deposits += t.Amount
		} else {
			withdrawals += t.Amount
		}
	}
	if deposits != a.Principal || withdrawals != a.Withdrawn {
		return fmt.Errorf("%w: %s history sums to %d/%d, account holds %d/%d", common.ErrInconsistentState,
			a.Address, deposits, withdrawals, a.Principal, a.Withdrawn)
	}
	return nil
}
