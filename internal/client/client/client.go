package client

import (
	"context"

	"github.com/dmitrijs2005/phoenixlocker/internal/api"
)

type Client interface {
	Close() error
	Register(ctx context.Context, address string, salt []byte, verifier []byte) error
	GetSalt(ctx context.Context, address string) ([]byte, error)
	Login(ctx context.Context, address string, verifier []byte) error
	Logout()
	Ping(ctx context.Context) error

	Deposit(ctx context.Context, amount uint64) (*api.MutationResponse, error)
	Withdraw(ctx context.Context, address, cadence string) (*api.MutationResponse, error)
	EmergencyWithdraw(ctx context.Context, address string) (*api.MutationResponse, error)

	GetBalance(ctx context.Context, address string) (*api.BalanceResponse, error)
	GetWithdrawable(ctx context.Context, address string) (*api.WithdrawableResponse, error)
	GetAvailable(ctx context.Context, address string) (*api.WithdrawableResponse, error)
	GetDepositors(ctx context.Context) ([]string, error)
	GetTotalLocked(ctx context.Context) (uint64, error)
	GetTransactions(ctx context.Context, address string) ([]api.Transaction, error)
	GetTokenBalance(ctx context.Context, address string) (uint64, error)

	Reconcile(ctx context.Context) (*api.ReconcileResponse, error)
	ExportSnapshot(ctx context.Context) (*api.ExportSnapshotResponse, error)
}
