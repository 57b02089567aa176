// Package services contains application services for the PhoenixLocker
// client. This file defines the authentication service: register, login,
// the offline password check that guards irreversible commands, and
// housekeeping of the locally saved profile.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/phoenixlocker/internal/client/client"
	"github.com/dmitrijs2005/phoenixlocker/internal/client/repositories/profile"
	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/cryptox"
	"github.com/dmitrijs2005/phoenixlocker/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and save the profile.
//   - VerifyPassword: check a password against the saved profile without
//     contacting the server.
//   - Register: create a new depositor account on the server.
//   - LastAddress: the address of the saved profile, if any.
//   - Logout: drop the session token and the saved profile.
type AuthService interface {
	Register(ctx context.Context, address string, password []byte) error
	Login(ctx context.Context, address string, password []byte) error
	VerifyPassword(ctx context.Context, address string, password []byte) error
	LastAddress(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
}

func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) profiles(db dbx.DBTX) profile.Repository {
	return profile.NewSQLiteRepository(db)
}

// Register generates a random salt, derives a master key from the password
// and sends salt and verifier to the server. The password never leaves the
// process.
func (a *authService) Register(ctx context.Context, address string, password []byte) error {
	address, err := common.NormalizeAddress(address)
	if err != nil {
		return err
	}

	salt := common.GenerateRandByteArray(32)
	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	if err := a.client.Register(ctx, address, salt, cryptox.MakeVerifier(key)); err != nil {
		return err
	}
	return nil
}

// Login fetches the salt, proves knowledge of the password and saves the
// profile so the password can be re-checked offline later.
func (a *authService) Login(ctx context.Context, address string, password []byte) error {
	address, err := common.NormalizeAddress(address)
	if err != nil {
		return err
	}

	salt, err := a.client.GetSalt(ctx, address)
	if err != nil {
		return fmt.Errorf("get salt error: %w", err)
	}

	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)
	verifier := cryptox.MakeVerifier(key)

	if err := a.client.Login(ctx, address, verifier); err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	p := &profile.Profile{Address: address, Salt: salt, Verifier: verifier}
	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return a.profiles(tx).Save(ctx, p)
	})
	if err != nil {
		return fmt.Errorf("profile saving error: %w", err)
	}
	return nil
}

// VerifyPassword returns client.ErrLocalDataNotAvailable when no profile is
// saved and client.ErrUnauthorized when address or password do not match it.
func (a *authService) VerifyPassword(ctx context.Context, address string, password []byte) error {
	p, err := a.profiles(a.db).Load(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		return client.ErrLocalDataNotAvailable
	}
	if err != nil {
		return err
	}

	if p.Address != address {
		return client.ErrUnauthorized
	}

	key := cryptox.DeriveMasterKey(password, p.Salt)
	defer common.WipeByteArray(key)

	if !cryptox.VerifierMatches(p.Verifier, cryptox.MakeVerifier(key)) {
		return client.ErrUnauthorized
	}
	return nil
}

// LastAddress returns "" when nothing is saved.
func (a *authService) LastAddress(ctx context.Context) (string, error) {
	p, err := a.profiles(a.db).Load(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return p.Address, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.Logout()
	return a.profiles(a.db).Clear(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
