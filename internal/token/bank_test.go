package token

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	bob   = "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"
)

func TestBank_PullAndPay(t *testing.T) {
	ctx := context.Background()
	b := NewBank()
	require.NoError(t, b.Mint(alice, 1000))

	require.NoError(t, b.PullFrom(ctx, alice, 600))
	assert.Equal(t, uint64(400), b.BalanceOf(alice))
	assert.Equal(t, uint64(600), b.Custody())

	require.NoError(t, b.PayTo(ctx, bob, 100))
	assert.Equal(t, uint64(100), b.BalanceOf(bob))
	assert.Equal(t, uint64(500), b.Custody())
}

func TestBank_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	b := NewBank()
	require.NoError(t, b.Mint(alice, 10))

	err := b.PullFrom(ctx, alice, 11)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.Equal(t, uint64(10), b.BalanceOf(alice), "failed pull must not move funds")

	err = b.PayTo(ctx, bob, 1)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.Zero(t, b.BalanceOf(bob))
}

func TestBank_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBank()
	require.NoError(t, b.Mint(alice, 10))
	require.ErrorIs(t, b.PullFrom(ctx, alice, 1), context.Canceled)
	require.ErrorIs(t, b.PayTo(ctx, alice, 1), context.Canceled)
}

func TestBank_MintOverflow(t *testing.T) {
	b := NewBank()
	require.NoError(t, b.Mint(alice, math.MaxUint64))
	require.Error(t, b.Mint(bob, 1))
	assert.Zero(t, b.BalanceOf(bob))
}

func TestBank_ConcurrentPullsConserveSupply(t *testing.T) {
	ctx := context.Background()
	b := NewBank()
	require.NoError(t, b.Mint(alice, 100))

	var wg sync.WaitGroup
	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.PullFrom(ctx, alice, 1)
		}()
	}
	wg.Wait()

	assert.Zero(t, b.BalanceOf(alice))
	assert.Equal(t, uint64(100), b.Custody())
}

func TestBank_MintCustody(t *testing.T) {
	ctx := context.Background()
	b := NewBank()
	require.NoError(t, b.MintCustody(300))
	assert.Equal(t, uint64(300), b.Custody())

	require.NoError(t, b.PayTo(ctx, alice, 300))
	assert.Equal(t, uint64(300), b.BalanceOf(alice))

	require.NoError(t, b.Mint(bob, math.MaxUint64-300))
	require.Error(t, b.MintCustody(1))
}
