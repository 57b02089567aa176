package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// LockerServiceClient is the client API for the locker service.
type LockerServiceClient interface {
	Ping(ctx context.Context, opts ...grpc.CallOption) (*PingResponse, error)
	RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*RegisterUserResponse, error)
	GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Deposit(ctx context.Context, in *DepositRequest, opts ...grpc.CallOption) (*MutationResponse, error)
	Withdraw(ctx context.Context, in *WithdrawRequest, opts ...grpc.CallOption) (*MutationResponse, error)
	EmergencyWithdraw(ctx context.Context, in *EmergencyWithdrawRequest, opts ...grpc.CallOption) (*MutationResponse, error)
	GetBalance(ctx context.Context, in *AddressRequest, opts ...grpc.CallOption) (*BalanceResponse, error)
	GetWithdrawable(ctx context.Context, in *AddressRequest, opts ...grpc.CallOption) (*WithdrawableResponse, error)
	GetAvailable(ctx context.Context, in *AddressRequest, opts ...grpc.CallOption) (*WithdrawableResponse, error)
	GetDepositors(ctx context.Context, opts ...grpc.CallOption) (*DepositorsResponse, error)
	GetTotalLocked(ctx context.Context, opts ...grpc.CallOption) (*TotalLockedResponse, error)
	GetTransactions(ctx context.Context, in *AddressRequest, opts ...grpc.CallOption) (*TransactionsResponse, error)
	GetTokenBalance(ctx context.Context, in *AddressRequest, opts ...grpc.CallOption) (*TokenBalanceResponse, error)
	Reconcile(ctx context.Context, opts ...grpc.CallOption) (*ReconcileResponse, error)
	ExportSnapshot(ctx context.Context, opts ...grpc.CallOption) (*ExportSnapshotResponse, error)
}

type lockerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLockerServiceClient returns a client that sends every call with the
// JSON content-subtype.
func NewLockerServiceClient(cc grpc.ClientConnInterface) LockerServiceClient {
	return &lockerServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *lockerServiceClient) Ping(ctx context.Context, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, LockerService_Ping_FullMethodName, &emptypb.Empty{}, opts)
}

func (c *lockerServiceClient) RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*RegisterUserResponse, error) {
	return invoke[RegisterUserResponse](ctx, c.cc, LockerService_RegisterUser_FullMethodName, in, opts)
}

func (c *lockerServiceClient) GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error) {
	return invoke[GetSaltResponse](ctx, c.cc, LockerService_GetSalt_FullMethodName, in, opts)
}

func (c *lockerServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, LockerService_Login_FullMethodName, in, opts)
}

func (c *lockerServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, LockerService_RefreshToken_FullMethodName, in, opts)
}

func (c *lockerServiceClient) Deposit(ctx context.Context, in *DepositRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, LockerService_Deposit_FullMethodName, in, opts)
}

func (c *lockerServiceClient) Withdraw(ctx context.Context, in *WithdrawRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, LockerService_Withdraw_FullMethodName, in, opts)
}

func (c *lockerServiceClient) EmergencyWithdraw(ctx context.Context, in *EmergencyWithdrawRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, LockerService_EmergencyWithdraw_FullMethodName, in, opts)
}

func (c *lockerServiceClient) GetBalance(ctx context.Context, in *AddressRequest, opts ...grpc.CallOption) (*BalanceResponse, error) {
	return invoke[BalanceResponse](ctx, c.cc, LockerService_GetBalance_FullMethodName, in, opts)
}

func (c *lockerServiceClient) GetWithdrawable(ctx context.Context, in *AddressRequest, opts ...grpc.CallOption) (*WithdrawableResponse, error) {
	return invoke[WithdrawableResponse](ctx, c.cc, LockerService_GetWithdrawable_FullMethodName, in, opts)
}

func (c *lockerServiceClient) GetAvailable(ctx context.Context, in *AddressRequest, opts ...grpc.CallOption) (*WithdrawableResponse, error) {
	return invoke[WithdrawableResponse](ctx, c.cc, LockerService_GetAvailable_FullMethodName, in, opts)
}

func (c *lockerServiceClient) GetDepositors(ctx context.Context, opts ...grpc.CallOption) (*DepositorsResponse, error) {
	return invoke[DepositorsResponse](ctx, c.cc, LockerService_GetDepositors_FullMethodName, &emptypb.Empty{}, opts)
}

func (c *lockerServiceClient) GetTotalLocked(ctx context.Context, opts ...grpc.CallOption) (*TotalLockedResponse, error) {
	return invoke[TotalLockedResponse](ctx, c.cc, LockerService_GetTotalLocked_FullMethodName, &emptypb.Empty{}, opts)
}

func (c *lockerServiceClient) GetTransactions(ctx context.Context, in *AddressRequest, opts ...grpc.CallOption) (*TransactionsResponse, error) {
	return invoke[TransactionsResponse](ctx, c.cc, LockerService_GetTransactions_FullMethodName, in, opts)
}

func (c *lockerServiceClient) GetTokenBalance(ctx context.Context, in *AddressRequest, opts ...grpc.CallOption) (*TokenBalanceResponse, error) {
	return invoke[TokenBalanceResponse](ctx, c.cc, LockerService_GetTokenBalance_FullMethodName, in, opts)
}

func (c *lockerServiceClient) Reconcile(ctx context.Context, opts ...grpc.CallOption) (*ReconcileResponse, error) {
	return invoke[ReconcileResponse](ctx, c.cc, LockerService_Reconcile_FullMethodName, &emptypb.Empty{}, opts)
}

func (c *lockerServiceClient) ExportSnapshot(ctx context.Context, opts ...grpc.CallOption) (*ExportSnapshotResponse, error) {
	return invoke[ExportSnapshotResponse](ctx, c.cc, LockerService_ExportSnapshot_FullMethodName, &emptypb.Empty{}, opts)
}
