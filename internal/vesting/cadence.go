// Package vesting holds the release schedule of the locker and the pure
// entitlement arithmetic. Nothing in here touches storage or the clock.
package vesting

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
)

// Cadence is an independent withdrawal pacing track.
type Cadence int

const (
	Daily Cadence = iota
	Weekly
	Monthly

	// CadenceCount is the number of cadences; per-cadence state is kept in
	// arrays of this length.
	CadenceCount = 3
)

// Cadences lists every cadence in a stable order.
func Cadences() []Cadence {
	return []Cadence{Daily, Weekly, Monthly}
}

// Valid reports whether c is one of the known cadences.
func (c Cadence) Valid() bool {
	return c >= Daily && c <= Monthly
}

func (c Cadence) String() string {
	switch c {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	default:
		return fmt.Sprintf("cadence(%d)", int(c))
	}
}

// PeriodDays is the minimum interval between two claims of this cadence.
func (c Cadence) PeriodDays() int64 {
	switch c {
	case Daily:
		return 1
	case Weekly:
		return 7
	case Monthly:
		return DaysPerMonth
	default:
		return 0
	}
}

// PeriodsInHorizon is the number of whole periods of c in the horizon
// (540, 77 and 18).
func (c Cadence) PeriodsInHorizon() int64 {
	p := c.PeriodDays()
	if p == 0 {
		return 0
	}
	return HorizonDays / p
}

// ParseCadence accepts the lower-case names returned by String, plus the
// one-letter shortcuts d, w and m.
func ParseCadence(s string) (Cadence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "d":
		return Daily, nil
	case "weekly", "w":
		return Weekly, nil
	case "monthly", "m":
		return Monthly, nil
	default:
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidCadence, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Cadence) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", common.ErrInvalidCadence, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cadence) UnmarshalText(b []byte) error {
	v, err := ParseCadence(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
