// This file implements UserService, which registers addresses, hands out
// login salts, issues JWT access tokens bound to an address and rotates the
// refresh tokens handed out alongside them.

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/cryptox"
	"github.com/dmitrijs2005/phoenixlocker/internal/logging"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/auth"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/config"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/models"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/repositories/users"
)

// saltSize is the length of the salt the client derives its key with.
const saltSize = 32

// refreshTokenSize is the number of random bytes behind a refresh token.
const refreshTokenSize = 32

// Minter credits fresh test funds. The in-memory token bank implements it.
type Minter interface {
	Mint(address string, amount uint64) error
}

// UserService provides authentication-related operations:
//   - Register: bind an address to its login material and fund it from the faucet
//   - GetSalt: return the salt the client needs to derive its verifier
//   - Login: verify the verifier and mint a token pair
//   - Refresh: trade a refresh token for a new pair
type UserService struct {
	users                        users.Repository
	tokens                       refreshtokens.Repository
	faucet                       Minter
	faucetAmount                 uint64
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
	logger                       logging.Logger
}

// NewUserService constructs a UserService. faucet may be nil, which disables
// funding at registration.
func NewUserService(repo users.Repository, tokens refreshtokens.Repository, faucet Minter, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		users:                        repo,
		tokens:                       tokens,
		faucet:                       faucet,
		faucetAmount:                 cfg.FaucetAmount,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
		logger:                       logger.With("module", "users"),
	}
}

// Register creates a user for address with the given salt and verifier.
func (s *UserService) Register(ctx context.Context, address string, salt, verifier []byte) (*models.User, error) {
	addr, err := common.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	if len(salt) == 0 || len(verifier) == 0 {
		return nil, fmt.Errorf("%w: empty salt or verifier", common.ErrInvalidCredentials)
	}

	u, err := s.users.Create(ctx, &models.User{Address: addr, Salt: salt, Verifier: verifier})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if s.faucet != nil && s.faucetAmount > 0 {
		if err := s.faucet.Mint(addr, s.faucetAmount); err != nil {
			s.logger.Warn(ctx, "faucet mint failed", "address", addr, "error", err)
		}
	}
	s.logger.Info(ctx, "user registered", "address", addr)
	return u, nil
}

// GetSalt returns the stored salt, or a stable fake one for unknown
// addresses so that probing does not reveal which addresses are registered.
func (s *UserService) GetSalt(ctx context.Context, address string) ([]byte, error) {
	addr, err := common.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByAddress(ctx, addr)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return cryptox.FakeSalt(s.jwtSecret, addr, saltSize), nil
		}
		return nil, common.ErrorInternal
	}
	return user.Salt, nil
}

// Login verifies the provided verifierCandidate against the stored verifier and,
// on success, returns a fresh access token and refresh token.
func (s *UserService) Login(ctx context.Context, address string, verifierCandidate []byte) (*models.TokenPair, error) {
	addr, err := common.NormalizeAddress(address)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	user, err := s.users.GetByAddress(ctx, addr)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.VerifierMatches(user.Verifier, verifierCandidate) {
		return nil, common.ErrorUnauthorized
	}

	return s.issue(ctx, user.Address)
}

// Refresh exchanges a live refresh token for a new pair. The presented token
// is revoked, so each refresh token works once.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	rt, err := s.tokens.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}

	if err := s.tokens.Delete(ctx, rt.Token); err != nil {
		return nil, common.ErrorInternal
	}
	if rt.Expired(s.now()) {
		return nil, common.ErrTokenExpired
	}

	return s.issue(ctx, rt.Address)
}

func (s *UserService) issue(ctx context.Context, address string) (*models.TokenPair, error) {
	access, err := auth.GenerateToken(address, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, err := common.MakeRandHexString(refreshTokenSize)
	if err != nil {
		return nil, common.ErrorInternal
	}
	now := s.now().UTC()
	rt := &models.RefreshToken{
		Token:     refresh,
		Address:   address,
		Expires:   now.Add(s.refreshTokenValidityDuration),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, rt); err != nil {
		s.logger.Error(ctx, "refresh token store failed", "address", address, "error", err)
		return nil, common.ErrorInternal
	}

	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// PruneRefreshTokens drops expired refresh tokens.
func (s *UserService) PruneRefreshTokens(ctx context.Context) error {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return fmt.Errorf("prune refresh tokens: %w", err)
	}
	if n > 0 {
		s.logger.Info(ctx, "pruned refresh tokens", "count", n)
	}
	return nil
}
