package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/api"
	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

// AddressKey holds the authenticated caller address in the request context.
const AddressKey ctxKey = "address"

// protectedMethods need a valid access token.
var protectedMethods = map[string]bool{
	api.LockerService_Deposit_FullMethodName:           true,
	api.LockerService_Withdraw_FullMethodName:          true,
	api.LockerService_EmergencyWithdraw_FullMethodName: true,
	api.LockerService_Reconcile_FullMethodName:         true,
	api.LockerService_ExportSnapshot_FullMethodName:    true,
}

// operatorMethods are protected methods reserved to the operator address.
var operatorMethods = map[string]bool{
	api.LockerService_Reconcile_FullMethodName:      true,
	api.LockerService_ExportSnapshot_FullMethodName: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	address, err := auth.GetAddressFromToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	if operatorMethods[info.FullMethod] && (s.operator == "" || address != s.operator) {
		return nil, status.Error(codes.PermissionDenied, "operator only")
	}

	ctx = context.WithValue(ctx, AddressKey, address)
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}

// callerFromContext returns the address put into ctx by the interceptor.
func callerFromContext(ctx context.Context) (string, bool) {
	a, ok := ctx.Value(AddressKey).(string)
	return a, ok && a != ""
}
