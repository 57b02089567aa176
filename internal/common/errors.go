// Package common defines shared constants, helpers and sentinel errors used
// across client and server layers of PhoenixLocker. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Ledger validation errors.
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidCadence    = errors.New("invalid cadence")
	ErrNothingToWithdraw = errors.New("nothing to withdraw")

	// ErrTransferFailed is returned when the token collaborator rejects a pull
	// or a payout. Ledger bookkeeping is left untouched.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrInconsistentState marks a store whose data breaks a ledger invariant.
	ErrInconsistentState = errors.New("inconsistent ledger state")

	// Registration errors.
	ErrAlreadyRegistered  = errors.New("address already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
