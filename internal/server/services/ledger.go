// Package services contains server-side business logic. This file implements
// LedgerService, the withdrawal engine: it validates callers and cadences,
// computes entitlements, and drives the store and the token collaborator.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/logging"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/events"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/store"
	"github.com/dmitrijs2005/phoenixlocker/internal/token"
	"github.com/dmitrijs2005/phoenixlocker/internal/vesting"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// RejectionRecorder counts operations refused before commit.
type RejectionRecorder interface {
	Reject(op, reason string)
}

// Custodian exposes the balance the locker holds at the token. The in-memory
// bank implements it.
type Custodian interface {
	Custody() uint64
}

type nopRecorder struct{}

func (nopRecorder) Reject(string, string) {}

// LedgerService is the entry point for every ledger operation.
type LedgerService struct {
	store     store.Store
	token     token.Collaborator
	clock     clockwork.Clock
	publisher events.Publisher
	rejects   RejectionRecorder
	logger    logging.Logger
}

// NewLedgerService wires the engine. rejects may be nil.
func NewLedgerService(st store.Store, tok token.Collaborator, clock clockwork.Clock,
	pub events.Publisher, rejects RejectionRecorder, logger logging.Logger) *LedgerService {
	if rejects == nil {
		rejects = nopRecorder{}
	}
	return &LedgerService{
		store:     st,
		token:     tok,
		clock:     clock,
		publisher: pub,
		rejects:   rejects,
		logger:    logger.With("module", "ledger"),
	}
}

// Deposit locks amount units from caller. The account is created on first
// deposit; a deposit into a drained account restarts every cadence clock.
func (s *LedgerService) Deposit(ctx context.Context, caller string, amount uint64) (*store.Result, error) {
	addr, err := common.NormalizeAddress(caller)
	if err != nil {
		return nil, s.reject(ctx, "deposit", err)
	}
	if amount == 0 {
		return nil, s.reject(ctx, "deposit", fmt.Errorf("%w: zero deposit", common.ErrInvalidAmount))
	}

	op := func(cur models.Account) (models.Account, models.Transaction, error) {
		now := s.now()
		if amount > math.MaxUint64-cur.Principal {
			return cur, models.Transaction{}, fmt.Errorf("%w: principal overflow", common.ErrInvalidAmount)
		}
		next := cur
		switch {
		case !cur.Exists():
			next.DepositedAt = now
			next.LastClaim = anchor(cur.LastClaim, now)
		case cur.Remaining() == 0:
			next.LastClaim = anchor(cur.LastClaim, now)
		}
		next.Principal += amount
		return next, s.newTransaction(addr, models.KindDeposit, amount, nil, now), nil
	}
	settle := func(ctx context.Context, tx models.Transaction) error {
		return s.transfer(s.token.PullFrom(ctx, addr, tx.Amount))
	}

	return s.apply(ctx, "deposit", addr, op, settle)
}

// Withdraw pays out the entitlement of cadence c. Only the account owner may
// withdraw.
func (s *LedgerService) Withdraw(ctx context.Context, caller, address string, c vesting.Cadence) (*store.Result, error) {
	addr, err := s.authorize(caller, address)
	if err != nil {
		return nil, s.reject(ctx, "withdraw", err)
	}
	if !c.Valid() {
		return nil, s.reject(ctx, "withdraw", fmt.Errorf("%w: %d", common.ErrInvalidCadence, int(c)))
	}

	op := func(cur models.Account) (models.Account, models.Transaction, error) {
		now := s.now()
		e := vesting.Entitlement(cur.Position(), c, now)
		if e == 0 {
			return cur, models.Transaction{}, common.ErrNothingToWithdraw
		}
		next := cur
		next.Withdrawn += e
		if now.After(next.LastClaim[c]) {
			next.LastClaim[c] = now
		}
		cadence := c
		return next, s.newTransaction(addr, models.KindWithdrawal, e, &cadence, now), nil
	}

	return s.apply(ctx, "withdraw", addr, op, s.payout(addr))
}

// EmergencyWithdraw pays out the whole remaining balance, ignoring the
// schedule.
func (s *LedgerService) EmergencyWithdraw(ctx context.Context, caller, address string) (*store.Result, error) {
	addr, err := s.authorize(caller, address)
	if err != nil {
		return nil, s.reject(ctx, "emergency_withdraw", err)
	}

	op := func(cur models.Account) (models.Account, models.Transaction, error) {
		now := s.now()
		e := cur.Remaining()
		if e == 0 {
			return cur, models.Transaction{}, common.ErrNothingToWithdraw
		}
		next := cur
		next.Withdrawn += e
		return next, s.newTransaction(addr, models.KindEmergency, e, nil, now), nil
	}

	return s.apply(ctx, "emergency_withdraw", addr, op, s.payout(addr))
}

// GetBalance returns (principal, remaining, withdrawn). Unknown addresses
// report zeros.
func (s *LedgerService) GetBalance(ctx context.Context, address string) (models.Balance, error) {
	a, err := s.account(ctx, address)
	if err != nil {
		return models.Balance{}, err
	}
	return a.Balance(), nil
}

// GetWithdrawable returns what one claim of each cadence releases once a
// period has elapsed: the nominal per-period share capped by the remaining
// balance.
func (s *LedgerService) GetWithdrawable(ctx context.Context, address string) (vesting.Withdrawable, error) {
	a, err := s.account(ctx, address)
	if err != nil {
		return vesting.Withdrawable{}, err
	}
	return vesting.Rates(a.Position()), nil
}

// GetAvailable returns what each cadence would pay if claimed right now.
func (s *LedgerService) GetAvailable(ctx context.Context, address string) (vesting.Withdrawable, error) {
	a, err := s.account(ctx, address)
	if err != nil {
		return vesting.Withdrawable{}, err
	}
	return vesting.Preview(a.Position(), s.now()), nil
}

func (s *LedgerService) GetDepositors(ctx context.Context) ([]string, error) {
	return s.store.Depositors(ctx)
}

func (s *LedgerService) GetTotalLocked(ctx context.Context) (uint64, error) {
	return s.store.TotalLocked(ctx)
}

// GetTransactions returns the history of address, oldest first.
func (s *LedgerService) GetTransactions(ctx context.Context, address string) ([]models.Transaction, error) {
	addr, err := common.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	return s.store.Transactions(ctx, addr)
}

// Snapshot returns a consistent copy of the whole ledger.
func (s *LedgerService) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	return s.store.Snapshot(ctx)
}

// Reconcile scans every account and compares the result with the running
// total and, when the token exposes it, the custody balance.
func (s *LedgerService) Reconcile(ctx context.Context) (*models.ReconcileReport, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	r := &models.ReconcileReport{
		CheckedAt:   s.now(),
		Accounts:    len(snap.Accounts),
		TotalLocked: snap.TotalLocked,
	}
	for i := range snap.Accounts {
		a := &snap.Accounts[i]
		r.ScannedLocked += a.Remaining()
		if a.Withdrawn > a.Principal {
			r.Problems = append(r.Problems, fmt.Sprintf("%s: withdrawn %d exceeds principal %d", a.Address, a.Withdrawn, a.Principal))
		}
		var deposits, withdrawals uint64
		for _, t := range snap.Transactions[a.Address] {
			if t.IsDeposit() {
				deposits += t.Amount
			} else {
				withdrawals += t.Amount
			}
		}
		if deposits != a.Principal {
			r.Problems = append(r.Problems, fmt.Sprintf("%s: deposits sum to %d, principal is %d", a.Address, deposits, a.Principal))
		}
		if withdrawals != a.Withdrawn {
			r.Problems = append(r.Problems, fmt.Sprintf("%s: withdrawals sum to %d, withdrawn is %d", a.Address, withdrawals, a.Withdrawn))
		}
	}
	if r.ScannedLocked != r.TotalLocked {
		r.Problems = append(r.Problems, fmt.Sprintf("total locked %d, accounts hold %d", r.TotalLocked, r.ScannedLocked))
	}
	if c, ok := s.token.(Custodian); ok {
		r.CustodyBalance = c.Custody()
		if r.CustodyBalance != r.TotalLocked {
			r.Problems = append(r.Problems, fmt.Sprintf("custody holds %d, total locked is %d", r.CustodyBalance, r.TotalLocked))
		}
	}

	if r.OK() {
		s.logger.Info(ctx, "reconcile ok", "accounts", r.Accounts, "total_locked", r.TotalLocked)
	} else {
		s.logger.Error(ctx, "reconcile found problems", "problems", r.Problems)
	}
	return r, nil
}

// --- helpers below ---

func (s *LedgerService) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *LedgerService) apply(ctx context.Context, opName, addr string, op store.Operation, settle store.Settlement) (*store.Result, error) {
	res, err := s.store.Apply(ctx, addr, op, settle)
	if err != nil {
		return nil, s.reject(ctx, opName, err)
	}

	e := models.EventFromTransaction(&res.Transaction, res.TotalLocked)
	s.publisher.Publish(ctx, e)
	return res, nil
}

func (s *LedgerService) payout(addr string) store.Settlement {
	return func(ctx context.Context, tx models.Transaction) error {
		return s.transfer(s.token.PayTo(ctx, addr, tx.Amount))
	}
}

func (s *LedgerService) transfer(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", common.ErrTransferFailed, err)
}

func (s *LedgerService) authorize(caller, address string) (string, error) {
	addr, err := common.NormalizeAddress(address)
	if err != nil {
		return "", err
	}
	who, err := common.NormalizeAddress(caller)
	if err != nil || who != addr {
		return "", common.ErrorUnauthorized
	}
	return addr, nil
}

func (s *LedgerService) account(ctx context.Context, address string) (*models.Account, error) {
	addr, err := common.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	a, err := s.store.Account(ctx, addr)
	if errors.Is(err, common.ErrorNotFound) {
		return &models.Account{Address: addr}, nil
	}
	return a, err
}

func (s *LedgerService) newTransaction(addr string, kind models.TransactionKind, amount uint64, c *vesting.Cadence, now time.Time) models.Transaction {
	return models.Transaction{
		ID:        uuid.New(),
		Address:   addr,
		Kind:      kind,
		Amount:    amount,
		Cadence:   c,
		Timestamp: now,
	}
}

// reject logs and counts a refused operation and returns err unchanged.
func (s *LedgerService) reject(ctx context.Context, op string, err error) error {
	s.rejects.Reject(op, reason(err))
	if errors.Is(err, common.ErrTransferFailed) || reason(err) == "internal" {
		s.logger.Warn(ctx, "operation failed", "op", op, "error", err)
	} else {
		s.logger.Debug(ctx, "operation rejected", "op", op, "error", err)
	}
	return err
}

func reason(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, common.ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, common.ErrInvalidCadence):
		return "invalid_cadence"
	case errors.Is(err, common.ErrNothingToWithdraw):
		return "nothing_to_withdraw"
	case errors.Is(err, common.ErrorUnauthorized):
		return "unauthorized"
	case errors.Is(err, common.ErrTransferFailed):
		return "transfer_failed"
	default:
		return "internal"
	}
}

// anchor moves every cadence clock forward to now. Clocks already past now
// stay where they are.
func anchor(claims [vesting.CadenceCount]time.Time, now time.Time) [vesting.CadenceCount]time.Time {
	for i := range claims {
		if now.After(claims[i]) {
			claims[i] = now
		}
	}
	return claims
}
