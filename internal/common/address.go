package common

import (
	"fmt"
	"regexp"
	"strings"
)

var addressRe = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// NormalizeAddress returns the canonical lower-case form of an account
// address ("0x" followed by 40 hex digits).
func NormalizeAddress(address string) (string, error) {
	a := strings.ToLower(strings.TrimSpace(address))
	if !addressRe.MatchString(a) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return a, nil
}
