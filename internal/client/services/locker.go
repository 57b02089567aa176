package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/amount"
	"github.com/dmitrijs2005/phoenixlocker/internal/api"
	"github.com/dmitrijs2005/phoenixlocker/internal/client/client"
	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/netx"
	"github.com/dmitrijs2005/phoenixlocker/internal/vesting"
)

// download is a seam for tests.
var download = netx.DownloadPresignedURL

// ErrNoDownloadLink means the snapshot was exported but the server could not
// sign a link to it.
var ErrNoDownloadLink = errors.New("snapshot has no download link")

// Balance is an account position rendered in token units.
type Balance struct {
	Principal string
	Remaining string
	Withdrawn string
}

// Receipt describes a completed mutation.
type Receipt struct {
	Kind        string
	Amount      string
	Cadence     string
	Timestamp   time.Time
	Balance     Balance
	TotalLocked string
}

// Withdrawable maps cadence names to rendered amounts, in cadence order.
type Withdrawable []CadenceAmount

type CadenceAmount struct {
	Cadence string
	Amount  string
}

type HistoryEntry struct {
	Kind      string
	Amount    string
	Cadence   string
	Timestamp time.Time
}

// LockerService turns CLI strings into integer token units and back.
type LockerService struct {
	client   client.Client
	decimals int32
}

func NewLockerService(c client.Client, decimals int32) *LockerService {
	return &LockerService{client: c, decimals: decimals}
}

func (s *LockerService) format(units uint64) string {
	return amount.Format(units, s.decimals)
}

func (s *LockerService) Deposit(ctx context.Context, value string) (*Receipt, error) {
	units, err := amount.Parse(value, s.decimals)
	if err != nil {
		return nil, err
	}
	if units == 0 {
		return nil, fmt.Errorf("%w: zero deposit", common.ErrInvalidAmount)
	}
	resp, err := s.client.Deposit(ctx, units)
	if err != nil {
		return nil, err
	}
	return s.receipt(resp), nil
}

func (s *LockerService) Withdraw(ctx context.Context, address, cadence string) (*Receipt, error) {
	c, err := vesting.ParseCadence(cadence)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Withdraw(ctx, address, c.String())
	if err != nil {
		return nil, err
	}
	return s.receipt(resp), nil
}

func (s *LockerService) EmergencyWithdraw(ctx context.Context, address string) (*Receipt, error) {
	resp, err := s.client.EmergencyWithdraw(ctx, address)
	if err != nil {
		return nil, err
	}
	return s.receipt(resp), nil
}

func (s *LockerService) Balance(ctx context.Context, address string) (*Balance, error) {
	resp, err := s.client.GetBalance(ctx, address)
	if err != nil {
		return nil, err
	}
	b := s.balance(*resp)
	return &b, nil
}

// Withdrawable returns the per-period rates of the account.
func (s *LockerService) Withdrawable(ctx context.Context, address string) (Withdrawable, error) {
	resp, err := s.client.GetWithdrawable(ctx, address)
	if err != nil {
		return nil, err
	}
	return s.withdrawable(resp), nil
}

// Available returns what each cadence would pay if claimed now.
func (s *LockerService) Available(ctx context.Context, address string) (Withdrawable, error) {
	resp, err := s.client.GetAvailable(ctx, address)
	if err != nil {
		return nil, err
	}
	return s.withdrawable(resp), nil
}

func (s *LockerService) Depositors(ctx context.Context) ([]string, error) {
	return s.client.GetDepositors(ctx)
}

func (s *LockerService) TotalLocked(ctx context.Context) (string, error) {
	total, err := s.client.GetTotalLocked(ctx)
	if err != nil {
		return "", err
	}
	return s.format(total), nil
}

func (s *LockerService) History(ctx context.Context, address string) ([]HistoryEntry, error) {
	txs, err := s.client.GetTransactions(ctx, address)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(txs))
	for _, t := range txs {
		out = append(out, HistoryEntry{Kind: t.Kind, Amount: s.format(t.Amount), Cadence: t.Cadence, Timestamp: t.Timestamp})
	}
	return out, nil
}

// WalletBalance is the token balance outside the locker.
func (s *LockerService) WalletBalance(ctx context.Context, address string) (string, error) {
	b, err := s.client.GetTokenBalance(ctx, address)
	if err != nil {
		return "", err
	}
	return s.format(b), nil
}

func (s *LockerService) Reconcile(ctx context.Context) (*api.ReconcileResponse, error) {
	return s.client.Reconcile(ctx)
}

// ExportSnapshot asks the server for a fresh snapshot. When dest is set the
// snapshot is downloaded through its presigned link and written there.
func (s *LockerService) ExportSnapshot(ctx context.Context, dest string) (*api.ExportSnapshotResponse, error) {
	resp, err := s.client.ExportSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if dest == "" {
		return resp, nil
	}
	if resp.URL == "" {
		return resp, ErrNoDownloadLink
	}
	body, err := download(ctx, resp.URL)
	if err != nil {
		return resp, fmt.Errorf("download snapshot: %w", err)
	}
	if err := os.WriteFile(dest, body, 0o600); err != nil {
		return resp, fmt.Errorf("save snapshot: %w", err)
	}
	return resp, nil
}

// Format renders raw units with the configured decimals.
func (s *LockerService) Format(units uint64) string {
	return s.format(units)
}

func (s *LockerService) balance(b api.BalanceResponse) Balance {
	return Balance{
		Principal: s.format(b.Principal),
		Remaining: s.format(b.Remaining),
		Withdrawn: s.format(b.Withdrawn),
	}
}

func (s *LockerService) withdrawable(w *api.WithdrawableResponse) Withdrawable {
	return Withdrawable{
		{Cadence: vesting.Daily.String(), Amount: s.format(w.Daily)},
		{Cadence: vesting.Weekly.String(), Amount: s.format(w.Weekly)},
		{Cadence: vesting.Monthly.String(), Amount: s.format(w.Monthly)},
	}
}

func (s *LockerService) receipt(m *api.MutationResponse) *Receipt {
	return &Receipt{
		Kind:        m.Transaction.Kind,
		Amount:      s.format(m.Transaction.Amount),
		Cadence:     m.Transaction.Cadence,
		Timestamp:   m.Transaction.Timestamp,
		Balance:     s.balance(m.Balance),
		TotalLocked: s.format(m.TotalLocked),
	}
}
