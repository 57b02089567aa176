package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/phoenixlocker/internal/api"
	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/store"
	"github.com/dmitrijs2005/phoenixlocker/internal/vesting"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) RegisterUser(ctx context.Context, req *api.RegisterUserRequest) (*api.RegisterUserResponse, error) {

	s.logger.Info(ctx, "Registration request", "address", req.Address)

	result, err := s.users.Register(ctx, req.Address, req.Salt, req.Verifier)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &api.RegisterUserResponse{ID: result.ID, Address: result.Address}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *api.GetSaltRequest) (*api.GetSaltResponse, error) {

	result, err := s.users.GetSalt(ctx, req.Address)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &api.GetSaltResponse{Salt: result}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {

	pair, err := s.users.Login(ctx, req.Address, req.VerifierCandidate)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}
		return nil, s.toStatus(ctx, err)
	}

	return &api.LoginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.LoginResponse, error) {
	pair, err := s.users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.LoginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) Deposit(ctx context.Context, req *api.DepositRequest) (*api.MutationResponse, error) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing caller")
	}

	res, err := s.ledger.Deposit(ctx, caller, req.Amount)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toMutationResponse(res), nil
}

func (s *GRPCServer) Withdraw(ctx context.Context, req *api.WithdrawRequest) (*api.MutationResponse, error) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing caller")
	}

	c, err := vesting.ParseCadence(req.Cadence)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	res, err := s.ledger.Withdraw(ctx, caller, req.Address, c)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toMutationResponse(res), nil
}

func (s *GRPCServer) EmergencyWithdraw(ctx context.Context, req *api.EmergencyWithdrawRequest) (*api.MutationResponse, error) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing caller")
	}

	res, err := s.ledger.EmergencyWithdraw(ctx, caller, req.Address)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toMutationResponse(res), nil
}

func (s *GRPCServer) GetBalance(ctx context.Context, req *api.AddressRequest) (*api.BalanceResponse, error) {
	b, err := s.ledger.GetBalance(ctx, req.Address)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	r := toBalanceResponse(b)
	return &r, nil
}

func (s *GRPCServer) GetWithdrawable(ctx context.Context, req *api.AddressRequest) (*api.WithdrawableResponse, error) {
	w, err := s.ledger.GetWithdrawable(ctx, req.Address)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toWithdrawableResponse(w), nil
}

func (s *GRPCServer) GetAvailable(ctx context.Context, req *api.AddressRequest) (*api.WithdrawableResponse, error) {
	w, err := s.ledger.GetAvailable(ctx, req.Address)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toWithdrawableResponse(w), nil
}

func (s *GRPCServer) GetDepositors(ctx context.Context, _ *emptypb.Empty) (*api.DepositorsResponse, error) {
	addrs, err := s.ledger.GetDepositors(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.DepositorsResponse{Addresses: addrs}, nil
}

func (s *GRPCServer) GetTotalLocked(ctx context.Context, _ *emptypb.Empty) (*api.TotalLockedResponse, error) {
	total, err := s.ledger.GetTotalLocked(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.TotalLockedResponse{TotalLocked: total}, nil
}

func (s *GRPCServer) GetTransactions(ctx context.Context, req *api.AddressRequest) (*api.TransactionsResponse, error) {
	txs, err := s.ledger.GetTransactions(ctx, req.Address)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out := make([]api.Transaction, 0, len(txs))
	for i := range txs {
		out = append(out, toTransaction(&txs[i]))
	}
	return &api.TransactionsResponse{Transactions: out}, nil
}

func (s *GRPCServer) GetTokenBalance(ctx context.Context, req *api.AddressRequest) (*api.TokenBalanceResponse, error) {
	if s.balances == nil {
		return nil, status.Error(codes.Unimplemented, "token balances are not available")
	}
	addr, err := common.NormalizeAddress(req.Address)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.TokenBalanceResponse{Balance: s.balances.BalanceOf(addr)}, nil
}

func (s *GRPCServer) Reconcile(ctx context.Context, _ *emptypb.Empty) (*api.ReconcileResponse, error) {
	r, err := s.ledger.Reconcile(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ReconcileResponse{
		CheckedAt:      r.CheckedAt,
		Accounts:       r.Accounts,
		TotalLocked:    r.TotalLocked,
		ScannedLocked:  r.ScannedLocked,
		CustodyBalance: r.CustodyBalance,
		Problems:       r.Problems,
	}, nil
}

func (s *GRPCServer) ExportSnapshot(ctx context.Context, _ *emptypb.Empty) (*api.ExportSnapshotResponse, error) {
	if s.snapshots == nil {
		return nil, status.Error(codes.Unimplemented, "snapshot export is not configured")
	}
	key, err := s.snapshots.Export(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	// the export itself succeeded; a missing link only costs the download
	url, err := s.snapshots.DownloadURL(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "presign snapshot failed", "key", key, "error", err)
	}
	return &api.ExportSnapshotResponse{Key: key, URL: url}, nil
}

// toStatus maps a service error to a gRPC status. Unknown errors are logged
// and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidAmount),
		errors.Is(err, common.ErrInvalidAddress),
		errors.Is(err, common.ErrInvalidCadence),
		errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrNothingToWithdraw):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrTransferFailed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, common.ErrAlreadyRegistered):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		s.logger.Error(ctx, "internal error", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func toTransaction(t *models.Transaction) api.Transaction {
	out := api.Transaction{
		ID:        t.ID.String(),
		Address:   t.Address,
		Kind:      string(t.Kind),
		Amount:    t.Amount,
		Timestamp: t.Timestamp,
	}
	if t.Cadence != nil {
		out.Cadence = t.Cadence.String()
	}
	return out
}

func toBalanceResponse(b models.Balance) api.BalanceResponse {
	return api.BalanceResponse{Principal: b.Principal, Remaining: b.Remaining, Withdrawn: b.Withdrawn}
}

func toWithdrawableResponse(w vesting.Withdrawable) *api.WithdrawableResponse {
	return &api.WithdrawableResponse{Daily: w.Daily, Weekly: w.Weekly, Monthly: w.Monthly}
}

func toMutationResponse(r *store.Result) *api.MutationResponse {
	return &api.MutationResponse{
		Transaction: toTransaction(&r.Transaction),
		Balance:     toBalanceResponse(r.Account.Balance()),
		TotalLocked: r.TotalLocked,
	}
}
