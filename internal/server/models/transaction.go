package models

import (
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/vesting"
	"github.com/google/uuid"
)

// TransactionKind tells deposits from the two withdrawal paths.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindEmergency  TransactionKind = "emergency"
)

// Transaction is one entry of an account's append-only history. Cadence is
// set for KindWithdrawal only.
type Transaction struct {
	ID        uuid.UUID        `json:"id"`
	Address   string           `json:"address"`
	Kind      TransactionKind  `json:"kind"`
	Amount    uint64           `json:"amount"`
	Cadence   *vesting.Cadence `json:"cadence,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Clone returns a copy that shares no memory with t.
func (t Transaction) Clone() Transaction {
	if t.Cadence != nil {
		c := *t.Cadence
		t.Cadence = &c
	}
	return t
}

// IsDeposit reports whether the entry added to the principal.
func (t *Transaction) IsDeposit() bool {
	return t.Kind == KindDeposit
}

// LockedDelta is the change the entry applies to the total locked value,
// split into credit and debit to stay in unsigned arithmetic.
func (t *Transaction) LockedDelta() (credit, debit uint64) {
	if t.IsDeposit() {
		return t.Amount, 0
	}
	return 0, t.Amount
}
