// Package amount converts between integer token units and human-readable
// decimal strings.
package amount

import (
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/shopspring/decimal"
)

// DefaultDecimals matches a USDT-style token.
const DefaultDecimals int32 = 6

// Format renders units as a fixed-point string with the given number of
// decimals, e.g. 1500000 with 6 decimals is "1.500000".
func Format(units uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -decimals).StringFixed(decimals)
}

// Parse reads a decimal string into integer units. It rejects negative
// values, values with more fractional digits than decimals allows, and
// values that do not fit in uint64.
func Parse(s string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %q", common.ErrInvalidAmount, s)
	}
	units := d.Shift(decimals)
	if !units.Equal(units.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than %d decimals", common.ErrInvalidAmount, s, decimals)
	}
	b := units.BigInt()
	if !b.IsUint64() {
		return 0, fmt.Errorf("%w: %q out of range", common.ErrInvalidAmount, s)
	}
	return b.Uint64(), nil
}
