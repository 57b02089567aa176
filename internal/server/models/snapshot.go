package models

import "time"

// Snapshot is a full, self-consistent copy of the ledger.
type Snapshot struct {
	TakenAt      time.Time                `json:"taken_at"`
	TotalLocked  uint64                   `json:"total_locked"`
	Depositors   []string                 `json:"depositors"`
	Accounts     []Account                `json:"accounts"`
	Transactions map[string][]Transaction `json:"transactions"`
}

// ReconcileReport is the outcome of a consistency check.
type ReconcileReport struct {
	CheckedAt      time.Time `json:"checked_at"`
	Accounts       int       `json:"accounts"`
	TotalLocked    uint64    `json:"total_locked"`
	ScannedLocked  uint64    `json:"scanned_locked"`
	CustodyBalance uint64    `json:"custody_balance"`
	Problems       []string  `json:"problems,omitempty"`
}

// OK reports whether no problem was found.
func (r *ReconcileReport) OK() bool {
	return len(r.Problems) == 0
}
