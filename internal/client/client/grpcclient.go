package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/api"
	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.LockerServiceClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = t
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

// refresh trades the stored refresh token for a new pair. Any failure
// forgets both tokens.
func (s *GRPCClient) refresh(ctx context.Context) bool {
	s.mu.RLock()
	rt := s.refreshToken
	s.mu.RUnlock()
	if rt == "" {
		return false
	}

	resp, err := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: rt})
	if err != nil {
		s.setTokens("", "")
		return false
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return true
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// accessTokenInterceptor attaches the current access token. When the server
// reports it expired the call is retried once with a refreshed token; if
// that is impossible the token is dropped so the user logs in again.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if t := s.token(); t != "" {
		ctx = withAccessToken(ctx, t)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)
	if !isTokenExpired(err) || method == api.LockerService_RefreshToken_FullMethodName {
		return err
	}

	if !s.refresh(ctx) {
		s.setToken("")
		return err
	}
	return invoker(withAccessToken(ctx, s.token()), method, req, reply, cc, opts...)
}

func NewLockerClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewLockerServiceClient(conn)
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, address string, salt []byte, verifier []byte) error {

	req := &api.RegisterUserRequest{Address: address, Salt: salt, Verifier: verifier}

	if _, err := s.client.RegisterUser(ctx, req); err != nil {
		return s.mapError(err)
	}

	return nil
}

func (s *GRPCClient) GetSalt(ctx context.Context, address string) ([]byte, error) {

	ctx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()

	resp, err := s.client.GetSalt(ctx, &api.GetSaltRequest{Address: address})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

func (s *GRPCClient) Login(ctx context.Context, address string, verifier []byte) error {

	resp, err := s.client.Login(ctx, &api.LoginRequest{Address: address, VerifierCandidate: verifier})
	if err != nil {
		return s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Logout forgets both tokens.
func (s *GRPCClient) Logout() {
	s.setTokens("", "")
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx)
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) Deposit(ctx context.Context, amount uint64) (*api.MutationResponse, error) {
	resp, err := s.client.Deposit(ctx, &api.DepositRequest{Amount: amount})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Withdraw(ctx context.Context, address, cadence string) (*api.MutationResponse, error) {
	resp, err := s.client.Withdraw(ctx, &api.WithdrawRequest{Address: address, Cadence: cadence})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) EmergencyWithdraw(ctx context.Context, address string) (*api.MutationResponse, error) {
	resp, err := s.client.EmergencyWithdraw(ctx, &api.EmergencyWithdrawRequest{Address: address})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) GetBalance(ctx context.Context, address string) (*api.BalanceResponse, error) {
	resp, err := s.client.GetBalance(ctx, &api.AddressRequest{Address: address})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) GetWithdrawable(ctx context.Context, address string) (*api.WithdrawableResponse, error) {
	resp, err := s.client.GetWithdrawable(ctx, &api.AddressRequest{Address: address})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) GetAvailable(ctx context.Context, address string) (*api.WithdrawableResponse, error) {
	resp, err := s.client.GetAvailable(ctx, &api.AddressRequest{Address: address})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) GetDepositors(ctx context.Context) ([]string, error) {
	resp, err := s.client.GetDepositors(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Addresses, nil
}

func (s *GRPCClient) GetTotalLocked(ctx context.Context) (uint64, error) {
	resp, err := s.client.GetTotalLocked(ctx)
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.TotalLocked, nil
}

func (s *GRPCClient) GetTransactions(ctx context.Context, address string) ([]api.Transaction, error) {
	resp, err := s.client.GetTransactions(ctx, &api.AddressRequest{Address: address})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Transactions, nil
}

func (s *GRPCClient) GetTokenBalance(ctx context.Context, address string) (uint64, error) {
	resp, err := s.client.GetTokenBalance(ctx, &api.AddressRequest{Address: address})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Balance, nil
}

func (s *GRPCClient) Reconcile(ctx context.Context) (*api.ReconcileResponse, error) {
	resp, err := s.client.Reconcile(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) ExportSnapshot(ctx context.Context) (*api.ExportSnapshotResponse, error) {
	resp, err := s.client.ExportSnapshot(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

// invalidArgument lists the sentinels an InvalidArgument status may carry,
// recognized by the message prefix the server writes.
var invalidArgument = []error{
	common.ErrInvalidAmount,
	common.ErrInvalidAddress,
	common.ErrInvalidCadence,
	common.ErrInvalidCredentials,
}

// mapError turns a gRPC status back into the sentinel the server started
// from, keeping the server message as context.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	msg := st.Message()

	switch st.Code() {
	case codes.InvalidArgument:
		for _, sentinel := range invalidArgument {
			if strings.HasPrefix(msg, sentinel.Error()) {
				return wrap(sentinel, msg)
			}
		}
		return fmt.Errorf("invalid argument: %s", msg)
	case codes.FailedPrecondition:
		return wrap(common.ErrNothingToWithdraw, msg)
	case codes.PermissionDenied:
		return wrap(common.ErrorUnauthorized, msg)
	case codes.Unauthenticated:
		if msg == common.ErrTokenExpired.Error() {
			return common.ErrTokenExpired
		}
		return ErrUnauthorized
	case codes.AlreadyExists:
		return wrap(common.ErrAlreadyRegistered, msg)
	case codes.NotFound:
		return wrap(common.ErrorNotFound, msg)
	case codes.Unavailable:
		if strings.HasPrefix(msg, common.ErrTransferFailed.Error()) {
			return wrap(common.ErrTransferFailed, msg)
		}
		return ErrUnavailable
	case codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// wrap returns sentinel, annotated with msg when it adds anything.
func wrap(sentinel error, msg string) error {
	if msg == "" || msg == sentinel.Error() {
		return sentinel
	}
	return fmt.Errorf("%w (%s)", sentinel, strings.TrimPrefix(strings.TrimPrefix(msg, sentinel.Error()), ": "))
}
