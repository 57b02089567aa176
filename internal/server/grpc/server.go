package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/phoenixlocker/internal/api"
	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/logging"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/store"
	"github.com/dmitrijs2005/phoenixlocker/internal/vesting"
	"google.golang.org/grpc"
)

// LedgerService is the part of the ledger engine served over gRPC.
type LedgerService interface {
	Deposit(ctx context.Context, caller string, amount uint64) (*store.Result, error)
	Withdraw(ctx context.Context, caller, address string, c vesting.Cadence) (*store.Result, error)
	EmergencyWithdraw(ctx context.Context, caller, address string) (*store.Result, error)
	GetBalance(ctx context.Context, address string) (models.Balance, error)
	GetWithdrawable(ctx context.Context, address string) (vesting.Withdrawable, error)
	GetAvailable(ctx context.Context, address string) (vesting.Withdrawable, error)
	GetDepositors(ctx context.Context) ([]string, error)
	GetTotalLocked(ctx context.Context) (uint64, error)
	GetTransactions(ctx context.Context, address string) ([]models.Transaction, error)
	Reconcile(ctx context.Context) (*models.ReconcileReport, error)
}

type UserService interface {
	Register(ctx context.Context, address string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, address string) ([]byte, error)
	Login(ctx context.Context, address string, verifierCandidate []byte) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

// SnapshotExporter writes a ledger snapshot to object storage and returns
// its key.
type SnapshotExporter interface {
	Export(ctx context.Context) (string, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

// TokenBalances reads wallet balances at the token.
type TokenBalances interface {
	BalanceOf(address string) uint64
}

type GRPCServer struct {
	api.UnimplementedLockerServiceServer
	address   string
	ledger    LedgerService
	users     UserService
	snapshots SnapshotExporter
	balances  TokenBalances
	operator  string
	logger    logging.Logger
	jwtSecret []byte
}

// Options carries the optional collaborators of the server. A nil
// Snapshots disables ExportSnapshot; a nil Balances disables
// GetTokenBalance. An empty Operator disables every operator-only method.
type Options struct {
	Snapshots SnapshotExporter
	Balances  TokenBalances
	Operator  string
}

func NewGRPCServer(a string, l logging.Logger, ls LedgerService, us UserService, secretKey string, opts Options) *GRPCServer {
	operator, err := common.NormalizeAddress(opts.Operator)
	if err != nil {
		operator = ""
	}
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		ledger:    ls,
		users:     us,
		snapshots: opts.Snapshots,
		balances:  opts.Balances,
		operator:  operator,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds the grpc.Server with the service and its interceptors
// registered, without listening.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	api.RegisterLockerServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
