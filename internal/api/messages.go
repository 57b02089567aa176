package api

import "time"

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterUserRequest struct {
	Address  string `json:"address"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

type RegisterUserResponse struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type GetSaltRequest struct {
	Address string `json:"address"`
}

type GetSaltResponse struct {
	Salt []byte `json:"salt"`
}

type LoginRequest struct {
	Address           string `json:"address"`
	VerifierCandidate []byte `json:"verifier_candidate"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRequest trades a single-use refresh token for a new pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// DepositRequest locks Amount units of the authenticated caller.
type DepositRequest struct {
	Amount uint64 `json:"amount"`
}

// WithdrawRequest claims the entitlement of one cadence: "daily", "weekly"
// or "monthly".
type WithdrawRequest struct {
	Address string `json:"address"`
	Cadence string `json:"cadence"`
}

type EmergencyWithdrawRequest struct {
	Address string `json:"address"`
}

// AddressRequest is shared by the per-address queries.
type AddressRequest struct {
	Address string `json:"address"`
}

type Transaction struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Kind      string    `json:"kind"`
	Amount    uint64    `json:"amount"`
	Cadence   string    `json:"cadence,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type BalanceResponse struct {
	Principal uint64 `json:"principal"`
	Remaining uint64 `json:"remaining"`
	Withdrawn uint64 `json:"withdrawn"`
}

// MutationResponse reports a committed deposit or withdrawal.
type MutationResponse struct {
	Transaction Transaction     `json:"transaction"`
	Balance     BalanceResponse `json:"balance"`
	TotalLocked uint64          `json:"total_locked"`
}

type WithdrawableResponse struct {
	Daily   uint64 `json:"daily"`
	Weekly  uint64 `json:"weekly"`
	Monthly uint64 `json:"monthly"`
}

type DepositorsResponse struct {
	Addresses []string `json:"addresses"`
}

type TotalLockedResponse struct {
	TotalLocked uint64 `json:"total_locked"`
}

type TransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type TokenBalanceResponse struct {
	Balance uint64 `json:"balance"`
}

type ReconcileResponse struct {
	CheckedAt      time.Time `json:"checked_at"`
	Accounts       int       `json:"accounts"`
	TotalLocked    uint64    `json:"total_locked"`
	ScannedLocked  uint64    `json:"scanned_locked"`
	CustodyBalance uint64    `json:"custody_balance"`
	Problems       []string  `json:"problems,omitempty"`
}

type ExportSnapshotResponse struct {
	Key string `json:"key"`
	// URL is a short-lived download link; empty when it could not be signed.
	URL string `json:"url,omitempty"`
}
