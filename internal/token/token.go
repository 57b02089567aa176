// Package token defines the narrow interface the ledger uses to move funds,
// and an in-memory bank implementing it for development and tests.
package token

import (
	"context"
	"errors"
)

// ErrInsufficientFunds is returned when a payer or the custody account cannot
// cover a transfer.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Collaborator moves fungible units between depositors and the locker's
// custody. Both calls are synchronous and are made at most once per ledger
// operation; implementations must not retry on their own.
type Collaborator interface {
	// PullFrom moves amount from payer into custody.
	PullFrom(ctx context.Context, payer string, amount uint64) error
	// PayTo moves amount from custody to recipient.
	PayTo(ctx context.Context, recipient string, amount uint64) error
}
