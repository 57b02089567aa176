package models

import (
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/vesting"
	"github.com/google/uuid"
)

// EventType names a committed ledger mutation.
type EventType string

const (
	EventDeposit           EventType = "deposit"
	EventWithdraw          EventType = "withdraw"
	EventEmergencyWithdraw EventType = "emergency_withdraw"
)

// Event is emitted once per committed mutation, after the commit.
type Event struct {
	ID          uuid.UUID        `json:"id"`
	Type        EventType        `json:"type"`
	Address     string           `json:"address"`
	Amount      uint64           `json:"amount"`
	Cadence     *vesting.Cadence `json:"cadence,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	TotalLocked uint64           `json:"total_locked"`
}

// EventFromTransaction derives the notification for a committed transaction.
func EventFromTransaction(tx *Transaction, totalLocked uint64) Event {
	e := Event{
		ID:          tx.ID,
		Address:     tx.Address,
		Amount:      tx.Amount,
		Cadence:     tx.Cadence,
		Timestamp:   tx.Timestamp,
		TotalLocked: totalLocked,
	}
	switch tx.Kind {
	case KindDeposit:
		e.Type = EventDeposit
	case KindWithdrawal:
		e.Type = EventWithdraw
	default:
		e.Type = EventEmergencyWithdraw
	}
	return e
}
