package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/phoenixlocker/internal/client/services"
)

const timeLayout = "2006-01-02 15:04:05"

// usageError is returned when a command is called with the wrong arguments.
type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

// addressArg picks the explicit address argument or falls back to the
// logged-in account.
func (a *App) addressArg(args []string, usage string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if addr := a.currentAddress(); addr != "" {
		return addr, nil
	}
	return "", usageError(usage)
}

func (a *App) printReceipt(r *services.Receipt) {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	kind := r.Kind
	if r.Cadence != "" {
		kind += " (" + r.Cadence + ")"
	}
	fmt.Fprintf(w, "%s\t%s\n", kind, r.Amount)
	fmt.Fprintf(w, "at\t%s\n", r.Timestamp.Local().Format(timeLayout))
	fmt.Fprintf(w, "principal\t%s\n", r.Balance.Principal)
	fmt.Fprintf(w, "remaining\t%s\n", r.Balance.Remaining)
	fmt.Fprintf(w, "withdrawn\t%s\n", r.Balance.Withdrawn)
	fmt.Fprintf(w, "total locked\t%s\n", r.TotalLocked)
}

func (a *App) printWithdrawable(title string, ws services.Withdrawable) {
	fmt.Fprintln(a.out, title)
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	defer w.Flush()
	for _, c := range ws {
		fmt.Fprintf(w, "  %s\t%s\n", c.Cadence, c.Amount)
	}
}

// Deposit locks tokens: deposit <amount>.
func (a *App) Deposit(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if len(args) != 1 {
		return usageError("deposit <amount>")
	}
	r, err := a.locker.Deposit(ctx, args[0])
	if err != nil {
		return err
	}
	a.printReceipt(r)
	return nil
}

// Withdraw claims one cadence: withdraw <daily|weekly|monthly>.
func (a *App) Withdraw(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if len(args) != 1 {
		return usageError("withdraw <daily|weekly|monthly>")
	}
	r, err := a.locker.Withdraw(ctx, a.currentAddress(), args[0])
	if err != nil {
		return err
	}
	a.printReceipt(r)
	return nil
}

// Emergency releases the whole remaining balance after the password is
// re-entered and the user confirms.
func (a *App) Emergency(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	address := a.currentAddress()

	b, err := a.locker.Balance(ctx, address)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Emergency withdrawal pays out %s and closes the position.\n", b.Remaining)

	ok, err := a.confirmWithPassword(ctx, "Withdraw everything now?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	r, err := a.locker.EmergencyWithdraw(ctx, address)
	if err != nil {
		return err
	}
	a.printReceipt(r)
	return nil
}

func (a *App) Balance(ctx context.Context, args []string) error {
	address, err := a.addressArg(args, "balance [address]")
	if err != nil {
		return err
	}
	b, err := a.locker.Balance(ctx, address)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "principal\t%s\n", b.Principal)
	fmt.Fprintf(w, "remaining\t%s\n", b.Remaining)
	fmt.Fprintf(w, "withdrawn\t%s\n", b.Withdrawn)
	return nil
}

func (a *App) Withdrawable(ctx context.Context, args []string) error {
	address, err := a.addressArg(args, "withdrawable [address]")
	if err != nil {
		return err
	}
	ws, err := a.locker.Withdrawable(ctx, address)
	if err != nil {
		return err
	}
	a.printWithdrawable("Per-period rates:", ws)
	return nil
}

func (a *App) Available(ctx context.Context, args []string) error {
	address, err := a.addressArg(args, "available [address]")
	if err != nil {
		return err
	}
	ws, err := a.locker.Available(ctx, address)
	if err != nil {
		return err
	}
	a.printWithdrawable("Claimable now:", ws)
	return nil
}

func (a *App) Depositors(ctx context.Context) error {
	ds, err := a.locker.Depositors(ctx)
	if err != nil {
		return err
	}
	if len(ds) == 0 {
		fmt.Fprintln(a.out, "No depositors yet.")
		return nil
	}
	for _, d := range ds {
		fmt.Fprintln(a.out, d)
	}
	return nil
}

func (a *App) Total(ctx context.Context) error {
	total, err := a.locker.TotalLocked(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Total locked: %s\n", total)
	return nil
}

func (a *App) History(ctx context.Context, args []string) error {
	address, err := a.addressArg(args, "history [address]")
	if err != nil {
		return err
	}
	hs, err := a.locker.History(ctx, address)
	if err != nil {
		return err
	}
	if len(hs) == 0 {
		fmt.Fprintln(a.out, "No transactions.")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "TIME\tKIND\tCADENCE\tAMOUNT")
	for _, h := range hs {
		cadence := h.Cadence
		if cadence == "" {
			cadence = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.Timestamp.Local().Format(timeLayout), h.Kind, cadence, h.Amount)
	}
	return nil
}

// Wallet shows the token balance held outside the locker.
func (a *App) Wallet(ctx context.Context, args []string) error {
	address, err := a.addressArg(args, "wallet [address]")
	if err != nil {
		return err
	}
	b, err := a.locker.WalletBalance(ctx, address)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wallet balance: %s\n", b)
	return nil
}

// Reconcile runs the operator consistency check.
func (a *App) Reconcile(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	r, err := a.locker.Reconcile(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "checked at\t%s\n", r.CheckedAt.Local().Format(timeLayout))
	fmt.Fprintf(w, "accounts\t%d\n", r.Accounts)
	fmt.Fprintf(w, "total locked\t%s\n", a.locker.Format(r.TotalLocked))
	fmt.Fprintf(w, "scanned locked\t%s\n", a.locker.Format(r.ScannedLocked))
	fmt.Fprintf(w, "custody balance\t%s\n", a.locker.Format(r.CustodyBalance))
	w.Flush()

	if len(r.Problems) == 0 {
		fmt.Fprintln(a.out, "Ledger is consistent.")
		return nil
	}
	fmt.Fprintf(a.out, "%d problem(s):\n", len(r.Problems))
	for _, p := range r.Problems {
		fmt.Fprintln(a.out, "  -", p)
	}
	return nil
}

// Snapshot exports the ledger: snapshot [file]. With a file argument the
// snapshot is also downloaded.
func (a *App) Snapshot(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	dest := ""
	if len(args) > 0 {
		dest = args[0]
	}

	r, err := a.locker.ExportSnapshot(ctx, dest)
	if r != nil {
		fmt.Fprintf(a.out, "Snapshot stored as %s\n", r.Key)
	}
	if errors.Is(err, services.ErrNoDownloadLink) {
		fmt.Fprintln(a.out, "The server did not provide a download link.")
		return nil
	}
	if err != nil {
		return err
	}
	if dest != "" {
		fmt.Fprintf(a.out, "Saved to %s\n", dest)
	} else if r.URL != "" {
		fmt.Fprintf(a.out, "Download link: %s\n", r.URL)
	}
	return nil
}
