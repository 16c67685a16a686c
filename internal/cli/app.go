// Package cli implements the interactive Librefy terminal client: a REPL over
// the auth, library, discovery, and authoring services, with an online-status
// watcher that degrades the session to offline mode when the server drops.
package cli

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/librefy/librefy-cli/internal/api"
	"github.com/librefy/librefy-cli/internal/config"
	"github.com/librefy/librefy-cli/internal/device"
	"github.com/librefy/librefy-cli/internal/library"
	"github.com/librefy/librefy-cli/internal/logging"
	"github.com/librefy/librefy-cli/internal/models"
	"github.com/librefy/librefy-cli/internal/services"
	"github.com/librefy/librefy-cli/internal/storage"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

type App struct {
	config *config.Config
	log    logging.Logger

	client   *api.Client
	sessions *services.SessionStore
	auth     services.AuthService
	books    services.BooksService
	writing  services.WritingService
	social   services.SocialService
	library  *library.Reconciler

	user   *models.User
	Mode   Mode
	reader *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "database initialization failed", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	sessions := services.NewSessionStore(db)
	client, err := api.NewClient(c.APIBaseURL, c.RequestTimeout, sessions)
	if err != nil {
		return nil, err
	}

	kv := storage.NewSQLiteKV(db)
	devices := device.NewProvider(kv)
	librarySvc := library.NewService(client, kv, devices, log)

	return &App{
		config:   c,
		log:      log,
		client:   client,
		sessions: sessions,
		auth:     services.NewAuthService(client, sessions, log),
		books:    services.NewBooksService(client, log),
		writing:  services.NewWritingService(client),
		social:   services.NewSocialService(client, log),
		library:  library.NewReconciler(librarySvc, log, 0),
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.log.Info(context.Background(), "connectivity mode changed", "mode", string(mode))
	}
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) Run(ctx context.Context) {
	defer a.library.CancelDownloads()
	a.Root(ctx)
}

// StartOnlineStatusWatcher probes the health endpoint on a fixed interval and
// flips the mode between online and offline. A disabled session stays
// disabled until the next successful login.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.client.Ping(pingCtx)
			cancel()

			if err != nil {
				if a.Mode == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.Mode == ModeOffline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
