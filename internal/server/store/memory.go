package store

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/jonboulle/clockwork"
)

// MemoryStore keeps the ledger in process memory.
//
// Writers to one address are serialized by a per-address mutex held for the
// whole of Apply, settlement included. The state lock only guards the maps
// and is never held while settling, so different addresses settle in
// parallel.
type MemoryStore struct {
	clock clockwork.Clock
	locks *keyedMutex

	mu       sync.RWMutex
	accounts map[string]models.Account
	order    []string
	history  map[string][]models.Transaction
	total    uint64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty ledger. The clock only stamps snapshots.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		clock:    clock,
		locks:    newKeyedMutex(),
		accounts: make(map[string]models.Account),
		history:  make(map[string][]models.Transaction),
	}
}

// NewMemoryStoreFromSnapshot builds a ledger from s after checking it.
func NewMemoryStoreFromSnapshot(clock clockwork.Clock, s *models.Snapshot) (*MemoryStore, error) {
	if err := verifySnapshot(s); err != nil {
		return nil, err
	}
	m := NewMemoryStore(clock)
	for _, a := range s.Accounts {
		m.accounts[a.Address] = a
		m.history[a.Address] = cloneHistory(s.Transactions[a.Address])
	}
	m.order = append(m.order, s.Depositors...)
	m.total = s.TotalLocked
	return m, nil
}

func (m *MemoryStore) Apply(ctx context.Context, address string, op Operation, settle Settlement) (*Result, error) {
	unlock := m.locks.Lock(address)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	current, ok := m.accounts[address]
	total := m.total
	m.mu.RUnlock()
	if !ok {
		current = models.Account{Address: address}
	}

	next, tx, err := op(current)
	if err != nil {
		return nil, err
	}
	if err := verifyTransition(&current, &next, &tx); err != nil {
		return nil, err
	}
	credit, debit := tx.LockedDelta()
	// Locked funds are bounded by the token supply, so this only trips on a
	// corrupted ledger.
	if credit > math.MaxUint64-total {
		return nil, fmt.Errorf("%w: total locked overflow", common.ErrInvalidAmount)
	}

	if err := settle(ctx, tx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !ok {
		m.order = append(m.order, address)
	}
	m.accounts[address] = next
	m.history[address] = append(m.history[address], tx.Clone())
	m.total = m.total + credit - debit

	return &Result{Account: next, Transaction: tx, TotalLocked: m.total}, nil
}

func (m *MemoryStore) Account(ctx context.Context, address string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[address]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (m *MemoryStore) Transactions(ctx context.Context, address string) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneHistory(m.history[address]), nil
}

func (m *MemoryStore) Depositors(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append(make([]string, 0, len(m.order)), m.order...), nil
}

func (m *MemoryStore) TotalLocked(ctx context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.total, nil
}

func (m *MemoryStore) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := &models.Snapshot{
		TakenAt:      m.clock.Now().UTC(),
		TotalLocked:  m.total,
		Depositors:   append(make([]string, 0, len(m.order)), m.order...),
		Accounts:     make([]models.Account, 0, len(m.order)),
		Transactions: make(map[string][]models.Transaction, len(m.order)),
	}
	for _, addr := range m.order {
		s.Accounts = append(s.Accounts, m.accounts[addr])
		s.Transactions[addr] = cloneHistory(m.history[addr])
	}
	return s, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func cloneHistory(h []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(h))
	for i := range h {
		out[i] = h[i].Clone()
	}
	return out
}
