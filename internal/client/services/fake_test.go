package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/phoenixlocker/internal/api"
	"github.com/dmitrijs2005/phoenixlocker/internal/client/client"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

// fakeClient implements client.Client. Methods a test does not override
// panic through the nil embedded interface.
type fakeClient struct {
	client.Client

	CloseErr    error
	RegisterErr error
	GetSaltRet  []byte
	GetSaltErr  error
	LoginErr    error
	PingErr     error
	loggedOut   bool

	LastRegisterAddress  string
	LastRegisterSalt     []byte
	LastRegisterVerifier []byte
	LastLoginAddress     string
	LastLoginVerifier    []byte

	MutationRet *api.MutationResponse
	MutationErr error
	LastAmount  uint64
	LastAddress string
	LastCadence string

	BalanceRet      *api.BalanceResponse
	WithdrawableRet *api.WithdrawableResponse
	TotalRet        uint64
	TokenBalanceRet uint64
	DepositorsRet   []string
	TransactionsRet []api.Transaction
	QueryErr        error

	SnapshotRet *api.ExportSnapshotResponse
}

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) Register(ctx context.Context, address string, salt []byte, verifier []byte) error {
	f.LastRegisterAddress = address
	f.LastRegisterSalt = append([]byte(nil), salt...)
	f.LastRegisterVerifier = append([]byte(nil), verifier...)
	return f.RegisterErr
}

func (f *fakeClient) GetSalt(ctx context.Context, address string) ([]byte, error) {
	return append([]byte(nil), f.GetSaltRet...), f.GetSaltErr
}

func (f *fakeClient) Login(ctx context.Context, address string, verifier []byte) error {
	f.LastLoginAddress = address
	f.LastLoginVerifier = append([]byte(nil), verifier...)
	return f.LoginErr
}

func (f *fakeClient) Logout() { f.loggedOut = true }

func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }

func (f *fakeClient) Deposit(ctx context.Context, amount uint64) (*api.MutationResponse, error) {
	f.LastAmount = amount
	return f.MutationRet, f.MutationErr
}

func (f *fakeClient) Withdraw(ctx context.Context, address, cadence string) (*api.MutationResponse, error) {
	f.LastAddress, f.LastCadence = address, cadence
	return f.MutationRet, f.MutationErr
}

func (f *fakeClient) EmergencyWithdraw(ctx context.Context, address string) (*api.MutationResponse, error) {
	f.LastAddress = address
	return f.MutationRet, f.MutationErr
}

func (f *fakeClient) GetBalance(ctx context.Context, address string) (*api.BalanceResponse, error) {
	f.LastAddress = address
	return f.BalanceRet, f.QueryErr
}

func (f *fakeClient) GetWithdrawable(ctx context.Context, address string) (*api.WithdrawableResponse, error) {
	f.LastAddress = address
	return f.WithdrawableRet, f.QueryErr
}

func (f *fakeClient) GetAvailable(ctx context.Context, address string) (*api.WithdrawableResponse, error) {
	f.LastAddress = address
	return f.WithdrawableRet, f.QueryErr
}

func (f *fakeClient) GetTotalLocked(ctx context.Context) (uint64, error) {
	return f.TotalRet, f.QueryErr
}

func (f *fakeClient) GetTokenBalance(ctx context.Context, address string) (uint64, error) {
	f.LastAddress = address
	return f.TokenBalanceRet, f.QueryErr
}

func (f *fakeClient) GetDepositors(ctx context.Context) ([]string, error) {
	return f.DepositorsRet, f.QueryErr
}

func (f *fakeClient) GetTransactions(ctx context.Context, address string) ([]api.Transaction, error) {
	f.LastAddress = address
	return f.TransactionsRet, f.QueryErr
}

func (f *fakeClient) ExportSnapshot(ctx context.Context) (*api.ExportSnapshotResponse, error) {
	return f.SnapshotRet, f.QueryErr
}
