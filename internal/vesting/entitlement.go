package vesting

import "time"

// Position is the part of an account the calculator needs.
type Position struct {
	Principal uint64
	Withdrawn uint64
	LastClaim [CadenceCount]time.Time
}

// Remaining is the unwithdrawn part of the principal. A corrupted position
// with Withdrawn above Principal reports zero.
func (p Position) Remaining() uint64 {
	if p.Withdrawn >= p.Principal {
		return 0
	}
	return p.Principal - p.Withdrawn
}

// Entitlement is the amount releasable under cadence c at now.
//
// Periods are counted from the cadence's own last claim and each one is worth
// FullHorizonShare of the original principal. The result is capped by the
// remaining balance that every cadence shares.
func Entitlement(p Position, c Cadence, now time.Time) uint64 {
	if !c.Valid() {
		return 0
	}
	remaining := p.Remaining()
	if remaining == 0 {
		return 0
	}
	periods := PeriodsElapsed(c, p.LastClaim[c], now)
	if periods == 0 {
		return 0
	}
	raw := mulSat(periods, FullHorizonShare(c, p.Principal))
	return min(raw, remaining)
}

// Withdrawable holds a preview of every cadence at one instant.
type Withdrawable struct {
	Daily   uint64 `json:"daily"`
	Weekly  uint64 `json:"weekly"`
	Monthly uint64 `json:"monthly"`
}

// Get returns the value for c.
func (w Withdrawable) Get(c Cadence) uint64 {
	switch c {
	case Daily:
		return w.Daily
	case Weekly:
		return w.Weekly
	case Monthly:
		return w.Monthly
	default:
		return 0
	}
}

// Preview computes the entitlement of every cadence independently. The
// values are not additive: they all draw on the same remaining balance.
func Preview(p Position, now time.Time) Withdrawable {
	return Withdrawable{
		Daily:   Entitlement(p, Daily, now),
		Weekly:  Entitlement(p, Weekly, now),
		Monthly: Entitlement(p, Monthly, now),
	}
}

// Rates is the nominal per-period release of every cadence, capped by the
// remaining balance. It is what a single claim pays once one period has
// elapsed, and it is all zeros for a drained position.
func Rates(p Position) Withdrawable {
	remaining := p.Remaining()
	rate := func(c Cadence) uint64 {
		return min(FullHorizonShare(c, p.Principal), remaining)
	}
	return Withdrawable{
		Daily:   rate(Daily),
		Weekly:  rate(Weekly),
		Monthly: rate(Monthly),
	}
}
