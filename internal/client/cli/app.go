package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/client/client"
	"github.com/dmitrijs2005/phoenixlocker/internal/client/config"
	"github.com/dmitrijs2005/phoenixlocker/internal/client/services"
	"github.com/dmitrijs2005/phoenixlocker/internal/filex"

	_ "modernc.org/sqlite"
)

// profileDir holds the profile database when ProfilePath is relative.
const profileDir = ".phoenixlocker"

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	locker      *services.LockerService
	reader      *bufio.Reader
	out         io.Writer

	mu      sync.RWMutex
	address string
	Mode    Mode
}

// profilePath resolves a relative profile file inside profileDir under the
// working directory.
func profilePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	dir, err := filex.EnsureProfileDir(profileDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, p), nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	path, err := profilePath(c.ProfilePath)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewLockerClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:      c,
		authService: services.NewAuthService(apiClient, db),
		locker:      services.NewLockerService(apiClient, int32(c.TokenDecimals)),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Mode
}

func (a *App) setAddress(address string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.address = address
}

func (a *App) currentAddress() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.address
}

func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.currentAddress() != ""
}

// StartOnlineStatusWatcher pings the server every interval and flips Mode
// between online and offline until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
