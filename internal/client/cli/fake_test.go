package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/phoenixlocker/internal/api"
	"github.com/dmitrijs2005/phoenixlocker/internal/client/client"
	"github.com/dmitrijs2005/phoenixlocker/internal/client/services"
)

const (
	alice = "0x00000000000000000000000000000000000000a1"
	bob   = "0x00000000000000000000000000000000000000b0"
)

type fakeAuth struct {
	regAddress string
	regPass    []byte
	regErr     error

	loginAddress string
	loginPass    []byte
	loginErr     error

	verifyAddress string
	verifyErr     error

	last    string
	lastErr error

	logoutCalled bool
	logoutErr    error

	pingErr error
}

func (f *fakeAuth) Register(_ context.Context, address string, pass []byte) error {
	f.regAddress, f.regPass = address, append([]byte(nil), pass...)
	return f.regErr
}
func (f *fakeAuth) Login(_ context.Context, address string, pass []byte) error {
	f.loginAddress, f.loginPass = address, append([]byte(nil), pass...)
	return f.loginErr
}
func (f *fakeAuth) VerifyPassword(_ context.Context, address string, _ []byte) error {
	f.verifyAddress = address
	return f.verifyErr
}
func (f *fakeAuth) LastAddress(context.Context) (string, error) { return f.last, f.lastErr }
func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}
func (f *fakeAuth) Ping(context.Context) error  { return f.pingErr }
func (f *fakeAuth) Close(context.Context) error { return nil }

// fakeAPI implements client.Client for the ledger commands.
type fakeAPI struct {
	client.Client

	mutation *api.MutationResponse
	balance  *api.BalanceResponse
	rates    *api.WithdrawableResponse
	txs      []api.Transaction
	recon    *api.ReconcileResponse
	snapshot *api.ExportSnapshotResponse
	err      error

	calls []string
}

func (f *fakeAPI) Deposit(_ context.Context, amount uint64) (*api.MutationResponse, error) {
	f.calls = append(f.calls, "deposit")
	return f.mutation, f.err
}
func (f *fakeAPI) Withdraw(_ context.Context, address, cadence string) (*api.MutationResponse, error) {
	f.calls = append(f.calls, "withdraw "+address+" "+cadence)
	return f.mutation, f.err
}
func (f *fakeAPI) EmergencyWithdraw(_ context.Context, address string) (*api.MutationResponse, error) {
	f.calls = append(f.calls, "emergency "+address)
	return f.mutation, f.err
}
func (f *fakeAPI) GetBalance(_ context.Context, address string) (*api.BalanceResponse, error) {
	f.calls = append(f.calls, "balance "+address)
	return f.balance, f.err
}
func (f *fakeAPI) GetWithdrawable(_ context.Context, address string) (*api.WithdrawableResponse, error) {
	return f.rates, f.err
}
func (f *fakeAPI) GetAvailable(_ context.Context, address string) (*api.WithdrawableResponse, error) {
	return f.rates, f.err
}
func (f *fakeAPI) GetDepositors(context.Context) ([]string, error) { return []string{alice, bob}, f.err }
func (f *fakeAPI) GetTotalLocked(context.Context) (uint64, error)  { return 2_500_000, f.err }
func (f *fakeAPI) GetTransactions(_ context.Context, address string) ([]api.Transaction, error) {
	return f.txs, f.err
}
func (f *fakeAPI) GetTokenBalance(_ context.Context, address string) (uint64, error) {
	return 42, f.err
}
func (f *fakeAPI) Reconcile(context.Context) (*api.ReconcileResponse, error) { return f.recon, f.err }
func (f *fakeAPI) ExportSnapshot(context.Context) (*api.ExportSnapshotResponse, error) {
	return f.snapshot, f.err
}

// newTestApp builds an App reading input from in and writing to a buffer.
func newTestApp(auth services.AuthService, c client.Client, in string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{
		authService: auth,
		locker:      services.NewLockerService(c, 6),
		reader:      bufio.NewReader(strings.NewReader(in)),
		out:         &out,
	}, &out
}

func stubInputs(t *testing.T, address string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return address, nil }
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}
