package cli

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dmitrijs2005/phoenixlocker/internal/client/client"
	"github.com/dmitrijs2005/phoenixlocker/internal/common"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getPassword     = GetPassword
	getConfirmation = GetConfirmation
)

var errNotLoggedIn = errors.New("not logged in, use 'login' first")

// Register prompts for an address and password and creates the account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	address, err := getSimpleText(a.reader, "Enter address (0x...)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, address, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! Use 'login' to sign in.")
	return nil
}

// Login prompts for credentials, offering the last saved address as the
// default. A successful login switches the app to online mode.
func (a *App) Login(ctx context.Context) error {
	last, err := a.authService.LastAddress(ctx)
	if err != nil {
		log.Printf("reading saved profile: %s", err.Error())
	}

	prompt := "Enter address (0x...)"
	if last != "" {
		prompt = fmt.Sprintf("Enter address [%s]", last)
	}
	address, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if address == "" {
		address = last
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, address, password); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}

	normalized, _ := common.NormalizeAddress(address)
	a.setAddress(normalized)
	a.setMode(ModeOnline)
	log.Printf("Login successful")
	return nil
}

// Logout forgets the session and the saved profile.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.setAddress("")
	return nil
}

// confirmWithPassword re-checks the password against the saved profile and
// asks for explicit consent.
func (a *App) confirmWithPassword(ctx context.Context, question string) (bool, error) {
	password, err := getPassword(a.out)
	if err != nil {
		return false, err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.VerifyPassword(ctx, a.currentAddress(), password); err != nil {
		return false, err
	}
	return getConfirmation(a.reader, question, a.out)
}
