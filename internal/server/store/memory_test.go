package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/dmitrijs2005/phoenixlocker/internal/vesting"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "0x00000000000000000000000000000000000000a1"
	bob   = "0x00000000000000000000000000000000000000b0"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func depositOp(amount uint64, now time.Time) Operation {
	return func(cur models.Account) (models.Account, models.Transaction, error) {
		next := cur
		if !next.Exists() {
			next.DepositedAt = now
			for i := range next.LastClaim {
				next.LastClaim[i] = now
			}
		}
		next.Principal += amount
		return next, models.Transaction{
			ID: uuid.New(), Address: cur.Address, Kind: models.KindDeposit, Amount: amount, Timestamp: now,
		}, nil
	}
}

func emergencyOp(now time.Time) Operation {
	return func(cur models.Account) (models.Account, models.Transaction, error) {
		next := cur
		amount := cur.Remaining()
		next.Withdrawn += amount
		return next, models.Transaction{
			ID: uuid.New(), Address: cur.Address, Kind: models.KindEmergency, Amount: amount, Timestamp: now,
		}, nil
	}
}

func okSettle(context.Context, models.Transaction) error { return nil }

func TestMemoryStore_DepositAndViews(t *testing.T) {
	s := NewMemoryStore(clockwork.NewFakeClockAt(t0))
	ctx := context.Background()

	_, err := s.Account(ctx, alice)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	res, err := s.Apply(ctx, alice, depositOp(1000, t0), okSettle)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), res.TotalLocked)
	assert.Equal(t, uint64(1000), res.Account.Principal)

	_, err = s.Apply(ctx, bob, depositOp(10, t0), okSettle)
	require.NoError(t, err)
	_, err = s.Apply(ctx, alice, depositOp(5, t0), okSettle)
	require.NoError(t, err)

	deps, err := s.Depositors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{alice, bob}, deps)

	total, err := s.TotalLocked(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1015), total)

	hist, err := s.Transactions(ctx, alice)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, uint64(1000), hist[0].Amount)

	hist, err = s.Transactions(ctx, "0x00000000000000000000000000000000000000ff")
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestMemoryStore_ViewsReturnCopies(t *testing.T) {
	s := NewMemoryStore(clockwork.NewFakeClockAt(t0))
	ctx := context.Background()

	_, err := s.Apply(ctx, alice, depositOp(1000, t0), okSettle)
	require.NoError(t, err)
	daily := vesting.Daily
	res, err := s.Apply(ctx, alice, func(cur models.Account) (models.Account, models.Transaction, error) {
		next := cur
		next.Withdrawn += 10
		next.LastClaim[vesting.Daily] = t0.Add(vesting.Day)
		return next, models.Transaction{
			ID: uuid.New(), Address: alice, Kind: models.KindWithdrawal, Amount: 10, Cadence: &daily, Timestamp: t0,
		}, nil
	}, okSettle)
	require.NoError(t, err)
	*res.Transaction.Cadence = vesting.Monthly
	daily = vesting.Weekly

	hist, err := s.Transactions(ctx, alice)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	hist[0].Amount = 1
	*hist[1].Cadence = vesting.Monthly
	_ = append(hist[:1], models.Transaction{Amount: 99})

	deps, err := s.Depositors(ctx)
	require.NoError(t, err)
	deps[0] = bob

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	*snap.Transactions[alice][1].Cadence = vesting.Weekly

	again, err := s.Transactions(ctx, alice)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, uint64(1000), again[0].Amount)
	assert.Equal(t, uint64(10), again[1].Amount)
	assert.Equal(t, vesting.Daily, *again[1].Cadence)
	deps, err = s.Depositors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{alice}, deps)
}

func TestMemoryStore_FailedSettleChangesNothing(t *testing.T) {
	s := NewMemoryStore(clockwork.NewFakeClockAt(t0))
	ctx := context.Background()
	_, err := s.Apply(ctx, alice, depositOp(1000, t0), okSettle)
	require.NoError(t, err)

	before, err := s.Snapshot(ctx)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.Apply(ctx, alice, emergencyOp(t0), func(context.Context, models.Transaction) error { return boom })
	assert.ErrorIs(t, err, boom)
	_, err = s.Apply(ctx, bob, depositOp(1, t0), func(context.Context, models.Transaction) error { return boom })
	assert.ErrorIs(t, err, boom)

	after, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMemoryStore_OperationErrorSkipsSettle(t *testing.T) {
	s := NewMemoryStore(clockwork.NewFakeClockAt(t0))
	called := false
	_, err := s.Apply(context.Background(), alice,
		func(models.Account) (models.Account, models.Transaction, error) {
			return models.Account{}, models.Transaction{}, common.ErrInvalidAmount
		},
		func(context.Context, models.Transaction) error { called = true; return nil })
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
	assert.False(t, called)
}

func TestMemoryStore_RejectsBrokenTransition(t *testing.T) {
	s := NewMemoryStore(clockwork.NewFakeClockAt(t0))
	ctx := context.Background()
	_, err := s.Apply(ctx, alice, depositOp(100, t0), okSettle)
	require.NoError(t, err)

	overdraw := func(cur models.Account) (models.Account, models.Transaction, error) {
		next := cur
		next.Withdrawn = cur.Principal + 1
		return next, models.Transaction{Address: cur.Address, Kind: models.KindWithdrawal, Amount: cur.Principal + 1}, nil
	}
	_, err = s.Apply(ctx, alice, overdraw, okSettle)
	assert.ErrorIs(t, err, common.ErrInconsistentState)

	mismatch := func(cur models.Account) (models.Account, models.Transaction, error) {
		next := cur
		next.Principal += 10
		return next, models.Transaction{Address: cur.Address, Kind: models.KindDeposit, Amount: 5}, nil
	}
	_, err = s.Apply(ctx, alice, mismatch, okSettle)
	assert.ErrorIs(t, err, common.ErrInconsistentState)

	rewind := func(cur models.Account) (models.Account, models.Transaction, error) {
		next := cur
		next.Principal++
		next.LastClaim[0] = cur.LastClaim[0].Add(-time.Second)
		return next, models.Transaction{Address: cur.Address, Kind: models.KindDeposit, Amount: 1}, nil
	}
	_, err = s.Apply(ctx, alice, rewind, okSettle)
	assert.ErrorIs(t, err, common.ErrInconsistentState)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := NewMemoryStore(clockwork.NewFakeClockAt(t0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Apply(ctx, alice, depositOp(1, t0), okSettle)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_SerializesOneAddress(t *testing.T) {
	s := NewMemoryStore(clockwork.NewFakeClockAt(t0))
	ctx := context.Background()
	_, err := s.Apply(ctx, alice, depositOp(1000, t0), okSettle)
	require.NoError(t, err)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		paid  uint64
		wins  int
		fails int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Apply(ctx, alice, func(cur models.Account) (models.Account, models.Transaction, error) {
				if cur.Remaining() == 0 {
					return cur, models.Transaction{}, common.ErrNothingToWithdraw
				}
				return emergencyOp(t0)(cur)
			}, func(_ context.Context, tx models.Transaction) error {
				mu.Lock()
				paid += tx.Amount
				mu.Unlock()
				return nil
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else {
				fails++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 15, fails)
	assert.Equal(t, uint64(1000), paid)
	total, _ := s.TotalLocked(ctx)
	assert.Zero(t, total)
}

func TestMemoryStore_SnapshotRestore(t *testing.T) {
	clock := clockwork.NewFakeClockAt(t0)
	s := NewMemoryStore(clock)
	ctx := context.Background()
	_, _ = s.Apply(ctx, alice, depositOp(1000, t0), okSettle)
	_, _ = s.Apply(ctx, bob, depositOp(7, t0), okSettle)
	_, _ = s.Apply(ctx, alice, emergencyOp(t0), okSettle)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, t0, snap.TakenAt)
	assert.Equal(t, uint64(7), snap.TotalLocked)

	restored, err := NewMemoryStoreFromSnapshot(clock, snap)
	require.NoError(t, err)
	again, err := restored.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, again)

	snap.TotalLocked = 8
	_, err = NewMemoryStoreFromSnapshot(clock, snap)
	assert.ErrorIs(t, err, common.ErrInconsistentState)

	snap.TotalLocked = 7
	snap.Transactions[bob] = nil
	_, err = NewMemoryStoreFromSnapshot(clock, snap)
	assert.ErrorIs(t, err, common.ErrInconsistentState)
}
