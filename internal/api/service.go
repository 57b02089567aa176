package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "phoenixlocker.LockerService"

const (
	LockerService_Ping_FullMethodName              = "/" + ServiceName + "/Ping"
	LockerService_RegisterUser_FullMethodName      = "/" + ServiceName + "/RegisterUser"
	LockerService_GetSalt_FullMethodName           = "/" + ServiceName + "/GetSalt"
	LockerService_Login_FullMethodName             = "/" + ServiceName + "/Login"
	LockerService_RefreshToken_FullMethodName      = "/" + ServiceName + "/RefreshToken"
	LockerService_Deposit_FullMethodName           = "/" + ServiceName + "/Deposit"
	LockerService_Withdraw_FullMethodName          = "/" + ServiceName + "/Withdraw"
	LockerService_EmergencyWithdraw_FullMethodName = "/" + ServiceName + "/EmergencyWithdraw"
	LockerService_GetBalance_FullMethodName        = "/" + ServiceName + "/GetBalance"
	LockerService_GetWithdrawable_FullMethodName   = "/" + ServiceName + "/GetWithdrawable"
	LockerService_GetAvailable_FullMethodName      = "/" + ServiceName + "/GetAvailable"
	LockerService_GetDepositors_FullMethodName     = "/" + ServiceName + "/GetDepositors"
	LockerService_GetTotalLocked_FullMethodName    = "/" + ServiceName + "/GetTotalLocked"
	LockerService_GetTransactions_FullMethodName   = "/" + ServiceName + "/GetTransactions"
	LockerService_GetTokenBalance_FullMethodName   = "/" + ServiceName + "/GetTokenBalance"
	LockerService_Reconcile_FullMethodName         = "/" + ServiceName + "/Reconcile"
	LockerService_ExportSnapshot_FullMethodName    = "/" + ServiceName + "/ExportSnapshot"
)

// LockerServiceServer is the server API for the locker service.
type LockerServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*PingResponse, error)
	RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*LoginResponse, error)
	Deposit(context.Context, *DepositRequest) (*MutationResponse, error)
	Withdraw(context.Context, *WithdrawRequest) (*MutationResponse, error)
	EmergencyWithdraw(context.Context, *EmergencyWithdrawRequest) (*MutationResponse, error)
	GetBalance(context.Context, *AddressRequest) (*BalanceResponse, error)
	GetWithdrawable(context.Context, *AddressRequest) (*WithdrawableResponse, error)
	GetAvailable(context.Context, *AddressRequest) (*WithdrawableResponse, error)
	GetDepositors(context.Context, *emptypb.Empty) (*DepositorsResponse, error)
	GetTotalLocked(context.Context, *emptypb.Empty) (*TotalLockedResponse, error)
	GetTransactions(context.Context, *AddressRequest) (*TransactionsResponse, error)
	GetTokenBalance(context.Context, *AddressRequest) (*TokenBalanceResponse, error)
	Reconcile(context.Context, *emptypb.Empty) (*ReconcileResponse, error)
	ExportSnapshot(context.Context, *emptypb.Empty) (*ExportSnapshotResponse, error)
	mustEmbedUnimplementedLockerServiceServer()
}

// UnimplementedLockerServiceServer must be embedded by implementations.
type UnimplementedLockerServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedLockerServiceServer) Ping(context.Context, *emptypb.Empty) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedLockerServiceServer) RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error) {
	return nil, unimplemented("RegisterUser")
}
func (UnimplementedLockerServiceServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, unimplemented("GetSalt")
}
func (UnimplementedLockerServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedLockerServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*LoginResponse, error) {
	return nil, unimplemented("RefreshToken")
}
func (UnimplementedLockerServiceServer) Deposit(context.Context, *DepositRequest) (*MutationResponse, error) {
	return nil, unimplemented("Deposit")
}
func (UnimplementedLockerServiceServer) Withdraw(context.Context, *WithdrawRequest) (*MutationResponse, error) {
	return nil, unimplemented("Withdraw")
}
func (UnimplementedLockerServiceServer) EmergencyWithdraw(context.Context, *EmergencyWithdrawRequest) (*MutationResponse, error) {
	return nil, unimplemented("EmergencyWithdraw")
}
func (UnimplementedLockerServiceServer) GetBalance(context.Context, *AddressRequest) (*BalanceResponse, error) {
	return nil, unimplemented("GetBalance")
}
func (UnimplementedLockerServiceServer) GetWithdrawable(context.Context, *AddressRequest) (*WithdrawableResponse, error) {
	return nil, unimplemented("GetWithdrawable")
}
func (UnimplementedLockerServiceServer) GetAvailable(context.Context, *AddressRequest) (*WithdrawableResponse, error) {
	return nil, unimplemented("GetAvailable")
}
func (UnimplementedLockerServiceServer) GetDepositors(context.Context, *emptypb.Empty) (*DepositorsResponse, error) {
	return nil, unimplemented("GetDepositors")
}
func (UnimplementedLockerServiceServer) GetTotalLocked(context.Context, *emptypb.Empty) (*TotalLockedResponse, error) {
	return nil, unimplemented("GetTotalLocked")
}
func (UnimplementedLockerServiceServer) GetTransactions(context.Context, *AddressRequest) (*TransactionsResponse, error) {
	return nil, unimplemented("GetTransactions")
}
func (UnimplementedLockerServiceServer) GetTokenBalance(context.Context, *AddressRequest) (*TokenBalanceResponse, error) {
	return nil, unimplemented("GetTokenBalance")
}
func (UnimplementedLockerServiceServer) Reconcile(context.Context, *emptypb.Empty) (*ReconcileResponse, error) {
	return nil, unimplemented("Reconcile")
}
func (UnimplementedLockerServiceServer) ExportSnapshot(context.Context, *emptypb.Empty) (*ExportSnapshotResponse, error) {
	return nil, unimplemented("ExportSnapshot")
}
func (UnimplementedLockerServiceServer) mustEmbedUnimplementedLockerServiceServer() {}

// unaryHandler adapts a typed server method to a grpc.MethodHandler.
func unaryHandler[Req, Resp any](fullMethod string, call func(LockerServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LockerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LockerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LockerService_ServiceDesc is the grpc.ServiceDesc for the locker service.
var LockerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LockerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unaryHandler(LockerService_Ping_FullMethodName, LockerServiceServer.Ping)},
		{MethodName: "RegisterUser", Handler: unaryHandler(LockerService_RegisterUser_FullMethodName, LockerServiceServer.RegisterUser)},
		{MethodName: "GetSalt", Handler: unaryHandler(LockerService_GetSalt_FullMethodName, LockerServiceServer.GetSalt)},
		{MethodName: "Login", Handler: unaryHandler(LockerService_Login_FullMethodName, LockerServiceServer.Login)},
		{MethodName: "RefreshToken", Handler: unaryHandler(LockerService_RefreshToken_FullMethodName, LockerServiceServer.RefreshToken)},
		{MethodName: "Deposit", Handler: unaryHandler(LockerService_Deposit_FullMethodName, LockerServiceServer.Deposit)},
		{MethodName: "Withdraw", Handler: unaryHandler(LockerService_Withdraw_FullMethodName, LockerServiceServer.Withdraw)},
		{MethodName: "EmergencyWithdraw", Handler: unaryHandler(LockerService_EmergencyWithdraw_FullMethodName, LockerServiceServer.EmergencyWithdraw)},
		{MethodName: "GetBalance", Handler: unaryHandler(LockerService_GetBalance_FullMethodName, LockerServiceServer.GetBalance)},
		{MethodName: "GetWithdrawable", Handler: unaryHandler(LockerService_GetWithdrawable_FullMethodName, LockerServiceServer.GetWithdrawable)},
		{MethodName: "GetAvailable", Handler: unaryHandler(LockerService_GetAvailable_FullMethodName, LockerServiceServer.GetAvailable)},
		{MethodName: "GetDepositors", Handler: unaryHandler(LockerService_GetDepositors_FullMethodName, LockerServiceServer.GetDepositors)},
		{MethodName: "GetTotalLocked", Handler: unaryHandler(LockerService_GetTotalLocked_FullMethodName, LockerServiceServer.GetTotalLocked)},
		{MethodName: "GetTransactions", Handler: unaryHandler(LockerService_GetTransactions_FullMethodName, LockerServiceServer.GetTransactions)},
		{MethodName: "GetTokenBalance", Handler: unaryHandler(LockerService_GetTokenBalance_FullMethodName, LockerServiceServer.GetTokenBalance)},
		{MethodName: "Reconcile", Handler: unaryHandler(LockerService_Reconcile_FullMethodName, LockerServiceServer.Reconcile)},
		{MethodName: "ExportSnapshot", Handler: unaryHandler(LockerService_ExportSnapshot_FullMethodName, LockerServiceServer.ExportSnapshot)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "phoenixlocker/locker.json",
}

// RegisterLockerServiceServer registers srv on s.
func RegisterLockerServiceServer(s grpc.ServiceRegistrar, srv LockerServiceServer) {
	s.RegisterService(&LockerService_ServiceDesc, srv)
}
