package vesting

import (
	"math"
	"math/bits"
	"time"
)

const (
	// LockPeriodMonths is the vesting horizon in months.
	LockPeriodMonths = 18
	// DaysPerMonth is the fixed month length used by the schedule.
	DaysPerMonth = 30
	// HorizonDays is the total vesting duration.
	HorizonDays = LockPeriodMonths * DaysPerMonth

	// Day is the unit every cadence period is measured in.
	Day = 24 * time.Hour
)

// FullHorizonShare is the nominal amount one period of c releases from
// principal. It truncates, so a remainder below PeriodsInHorizon can only be
// taken out through the emergency path or once periods accumulate.
func FullHorizonShare(c Cadence, principal uint64) uint64 {
	n := c.PeriodsInHorizon()
	if n <= 0 {
		return 0
	}
	return principal / uint64(n)
}

// PeriodsElapsed returns how many whole periods of c fit between lastClaim and
// now. A now before lastClaim counts as zero.
func PeriodsElapsed(c Cadence, lastClaim, now time.Time) uint64 {
	period := time.Duration(c.PeriodDays()) * Day
	if period <= 0 || !now.After(lastClaim) {
		return 0
	}
	return uint64(now.Sub(lastClaim) / period)
}

// mulSat multiplies without wrapping around.
func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
