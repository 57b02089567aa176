package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
)

func (a *App) getStatus() string {
	s := ""
	if addr := a.currentAddress(); addr != "" {
		s = addr + " "
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root greets the user, attempts a login and runs the REPL until exit.
func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to PhoenixLocker CLI (type 'help' for commands)")

	if err := a.Login(ctx); err != nil {
		printlnFn("Error:", describeError(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}
