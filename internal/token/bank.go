package token

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// Bank is an in-memory fungible token with a single custody account holding
// everything pulled by the locker.
type Bank struct {
	mu       sync.Mutex
	balances map[string]uint64
	custody  uint64
	supply   uint64
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{balances: make(map[string]uint64)}
}

// Mint credits amount to address, the way the dev faucet hands out test funds.
func (b *Bank) Mint(address string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if amount > math.MaxUint64-b.supply {
		return fmt.Errorf("mint %d: supply overflow", amount)
	}
	b.supply += amount
	b.balances[address] += amount
	return nil
}

// BalanceOf returns the free balance of address.
func (b *Bank) BalanceOf(address string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[address]
}

// Custody returns what the locker currently holds.
func (b *Bank) Custody() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.custody
}

// PullFrom implements Collaborator.
func (b *Bank) PullFrom(ctx context.Context, payer string, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.balances[payer] < amount {
		return fmt.Errorf("pull %d from %s: %w", amount, payer, ErrInsufficientFunds)
	}
	b.balances[payer] -= amount
	b.custody += amount
	return nil
}

// PayTo implements Collaborator.
func (b *Bank) PayTo(ctx context.Context, recipient string, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.custody < amount {
		return fmt.Errorf("pay %d to %s: %w", amount, recipient, ErrInsufficientFunds)
	}
	b.custody -= amount
	b.balances[recipient] += amount
	return nil
}

// MintCustody credits amount straight to custody. The dev server uses it at
// start-up so that a ledger restored from storage is backed by the bank.
func (b *Bank) MintCustody(amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if amount > math.MaxUint64-b.supply {
		return fmt.Errorf("mint custody %d: supply overflow", amount)
	}
	b.supply += amount
	b.custody += amount
	return nil
}
