package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/phoenixlocker/internal/client/client"
	"github.com/dmitrijs2005/phoenixlocker/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	Deposit(ctx context.Context, args []string) error
	Withdraw(ctx context.Context, args []string) error
	Emergency(ctx context.Context, args []string) error

	Balance(ctx context.Context, args []string) error
	Withdrawable(ctx context.Context, args []string) error
	Available(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Wallet(ctx context.Context, args []string) error
	Depositors(ctx context.Context) error
	Total(ctx context.Context) error

	Reconcile(ctx context.Context) error
	Snapshot(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: register, login, balance <addr>, withdrawable <addr>, available <addr>, " +
		"history <addr>, wallet <addr>, depositors, total, exit"
	helpLoggedIn = "Available commands: deposit <amount>, withdraw <daily|weekly|monthly>, emergency, " +
		"balance, withdrawable, available, history, wallet, depositors, total, reconcile, snapshot [file], logout, exit"
)

// runREPL starts a simple read–eval–print loop for the PhoenixLocker CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and passes the rest as arguments. Command errors are printed and
// the loop continues. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("locker %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)

		case "deposit":
			err = a.Deposit(ctx, args)
		case "withdraw":
			err = a.Withdraw(ctx, args)
		case "emergency":
			err = a.Emergency(ctx, args)

		case "balance":
			err = a.Balance(ctx, args)
		case "withdrawable":
			err = a.Withdrawable(ctx, args)
		case "available":
			err = a.Available(ctx, args)
		case "history":
			err = a.History(ctx, args)
		case "wallet":
			err = a.Wallet(ctx, args)
		case "depositors":
			err = a.Depositors(ctx)
		case "total":
			err = a.Total(ctx)

		case "reconcile":
			err = a.Reconcile(ctx)
		case "snapshot":
			err = a.Snapshot(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", describeError(err))
		}
	}
}

// describeError turns the errors users commonly hit into a hint.
func describeError(err error) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again when online"
	case errors.Is(err, client.ErrUnauthorized):
		return "not authorized for this action"
	case errors.Is(err, client.ErrLocalDataNotAvailable):
		return "no saved profile, log in again"
	case errors.Is(err, common.ErrNothingToWithdraw):
		return err.Error() + " (nothing has accrued yet)"
	default:
		return err.Error()
	}
}
