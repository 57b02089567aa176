package models

import (
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/vesting"
)

// Account is the ledger record of one depositor.
type Account struct {
	Address     string                          `json:"address"`
	Principal   uint64                          `json:"principal"`
	Withdrawn   uint64                          `json:"withdrawn"`
	DepositedAt time.Time                       `json:"deposited_at"`
	LastClaim   [vesting.CadenceCount]time.Time `json:"last_claim"`
}

// Remaining is Principal minus Withdrawn.
func (a *Account) Remaining() uint64 {
	return a.Position().Remaining()
}

// Exists reports whether the account has ever received a deposit.
func (a *Account) Exists() bool {
	return !a.DepositedAt.IsZero()
}

// Position is the view the entitlement calculator works on.
func (a *Account) Position() vesting.Position {
	return vesting.Position{
		Principal: a.Principal,
		Withdrawn: a.Withdrawn,
		LastClaim: a.LastClaim,
	}
}

// Balance is the public snapshot of an account.
func (a *Account) Balance() Balance {
	return Balance{Principal: a.Principal, Remaining: a.Remaining(), Withdrawn: a.Withdrawn}
}

// Balance is (principal, remaining, withdrawn). Unknown addresses report zeros.
type Balance struct {
	Principal uint64 `json:"principal"`
	Remaining uint64 `json:"remaining"`
	Withdrawn uint64 `json:"withdrawn"`
}
