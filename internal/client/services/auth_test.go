package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/phoenixlocker/internal/client/client"
	"github.com/dmitrijs2005/phoenixlocker/internal/client/repositories/profile"
	"github.com/dmitrijs2005/phoenixlocker/internal/common"
	"github.com/dmitrijs2005/phoenixlocker/internal/cryptox"
	"github.com/stretchr/testify/require"
)

const (
	alice = "0x00000000000000000000000000000000000000a1"
	bob   = "0x00000000000000000000000000000000000000b0"
)

func saveProfile(t *testing.T, svc AuthService, address string, password []byte) {
	t.Helper()
	a := svc.(*authService)
	salt := []byte("salty")
	p := &profile.Profile{
		Address:  address,
		Salt:     salt,
		Verifier: cryptox.MakeVerifier(cryptox.DeriveMasterKey(password, salt)),
	}
	require.NoError(t, a.profiles(a.db).Save(context.Background(), p))
}

func TestRegister_SendsSaltAndVerifier(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, setupDB(t))

	err := svc.Register(context.Background(), strings.ToUpper(alice[2:]), []byte("p"))
	require.Error(t, err, "missing 0x prefix")

	err = svc.Register(context.Background(), "0x00000000000000000000000000000000000000A1", []byte("p"))
	require.NoError(t, err)

	require.Equal(t, alice, fc.LastRegisterAddress)
	require.Len(t, fc.LastRegisterSalt, 32)
	expected := cryptox.MakeVerifier(cryptox.DeriveMasterKey([]byte("p"), fc.LastRegisterSalt))
	require.Equal(t, expected, fc.LastRegisterVerifier)
}

func TestRegister_ErrorFromClient(t *testing.T) {
	fc := &fakeClient{RegisterErr: common.ErrAlreadyRegistered}
	svc := NewAuthService(fc, setupDB(t))

	err := svc.Register(context.Background(), alice, []byte("p"))
	require.ErrorIs(t, err, common.ErrAlreadyRegistered)
}

func TestLogin_InvalidAddress(t *testing.T) {
	svc := NewAuthService(&fakeClient{}, setupDB(t))

	err := svc.Login(context.Background(), "alice", []byte("p"))
	require.ErrorIs(t, err, common.ErrInvalidAddress)
}

func TestLogin_GetSaltError_Wrapped(t *testing.T) {
	fc := &fakeClient{GetSaltErr: errors.New("network down")}
	svc := NewAuthService(fc, setupDB(t))

	err := svc.Login(context.Background(), alice, []byte("p"))
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "get salt error:"))
}

func TestLogin_LoginError_Wrapped(t *testing.T) {
	fc := &fakeClient{GetSaltRet: []byte("s"), LoginErr: client.ErrUnauthorized}
	svc := NewAuthService(fc, setupDB(t))

	err := svc.Login(context.Background(), alice, []byte("p"))
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.True(t, strings.HasPrefix(err.Error(), "login error:"))

	last, err := svc.LastAddress(context.Background())
	require.NoError(t, err)
	require.Empty(t, last)
}

func TestLogin_Success_SavesProfile(t *testing.T) {
	fc := &fakeClient{GetSaltRet: []byte("salt")}
	svc := NewAuthService(fc, setupDB(t))
	ctx := context.Background()

	require.NoError(t, svc.Login(ctx, alice, []byte("pass")))

	expected := cryptox.MakeVerifier(cryptox.DeriveMasterKey([]byte("pass"), []byte("salt")))
	require.Equal(t, alice, fc.LastLoginAddress)
	require.Equal(t, expected, fc.LastLoginVerifier)

	last, err := svc.LastAddress(ctx)
	require.NoError(t, err)
	require.Equal(t, alice, last)

	require.NoError(t, svc.VerifyPassword(ctx, alice, []byte("pass")))
}

func TestVerifyPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("no profile", func(t *testing.T) {
		svc := NewAuthService(&fakeClient{}, setupDB(t))
		err := svc.VerifyPassword(ctx, alice, []byte("pass"))
		require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
	})

	t.Run("other address", func(t *testing.T) {
		svc := NewAuthService(&fakeClient{}, setupDB(t))
		saveProfile(t, svc, bob, []byte("pass"))
		err := svc.VerifyPassword(ctx, alice, []byte("pass"))
		require.ErrorIs(t, err, client.ErrUnauthorized)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := NewAuthService(&fakeClient{}, setupDB(t))
		saveProfile(t, svc, alice, []byte("correct"))
		err := svc.VerifyPassword(ctx, alice, []byte("wrong"))
		require.ErrorIs(t, err, client.ErrUnauthorized)
	})

	t.Run("ok", func(t *testing.T) {
		svc := NewAuthService(&fakeClient{}, setupDB(t))
		saveProfile(t, svc, alice, []byte("correct"))
		require.NoError(t, svc.VerifyPassword(ctx, alice, []byte("correct")))
	})
}

func TestLogout_ClearsProfileAndToken(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, setupDB(t))
	ctx := context.Background()
	saveProfile(t, svc, alice, []byte("pass"))

	require.NoError(t, svc.Logout(ctx))
	require.True(t, fc.loggedOut)

	last, err := svc.LastAddress(ctx)
	require.NoError(t, err)
	require.Empty(t, last)
}

func TestPing_Close_Delegate(t *testing.T) {
	fc := &fakeClient{PingErr: client.ErrUnavailable, CloseErr: errors.New("io")}
	svc := NewAuthService(fc, setupDB(t))

	require.ErrorIs(t, svc.Ping(context.Background()), client.ErrUnavailable)
	require.EqualError(t, svc.Close(context.Background()), "io")
}
