// Package cli is the interactive shell of the Vaultify client. It renders
// lists, pickers and upload progress from the state owned by the core
// packages; none of the vault logic lives here.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sahilsync07/vaultify/internal/client/audit"
	"github.com/sahilsync07/vaultify/internal/client/config"
	"github.com/sahilsync07/vaultify/internal/client/drive"
	"github.com/sahilsync07/vaultify/internal/client/session"
	"github.com/sahilsync07/vaultify/internal/client/upload"
	"github.com/sahilsync07/vaultify/internal/logging"
)

type App struct {
	config      *config.Config
	log         logging.Logger
	holder      *session.Holder
	auth        *session.Authenticator
	gateway     *drive.Gateway
	coordinator *upload.Coordinator
	recorder    *audit.Recorder
	reader      *bufio.Reader
}

func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	sessionPath, err := session.DefaultPath()
	if err != nil {
		return nil, err
	}

	holder := session.NewHolder(sessionPath, log)
	auth := session.NewAuthenticator(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.RedirectAddr, holder, log)
	gateway := drive.NewGateway(cfg.DriveFolderID, log)
	recorder := audit.NewRecorder(gateway, holder, log)
	coordinator := upload.NewCoordinator(gateway, auth, recorder, log)

	app := &App{
		config:      cfg,
		log:         log,
		holder:      holder,
		auth:        auth,
		gateway:     gateway,
		coordinator: coordinator,
		recorder:    recorder,
		reader:      bufio.NewReader(os.Stdin),
	}

	coordinator.OnComplete(func() {
		fmt.Println("\nUpload completed successfully! Check 'list'.")
	})
	coordinator.OnConfigError(func(msg string) {
		fmt.Printf("\nConfiguration problem: %s\n", msg)
	})

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.holder.Current() != nil
}

// withToken runs fn with the current access token, acquiring one when none
// is held. A single 401 triggers one invalidate-reacquire-retry cycle; a
// second rejection is returned to the caller.
func (a *App) withToken(ctx context.Context, fn func(token string) error) error {
	token, ok := a.holder.Token()
	if !ok {
		res := <-a.auth.Request(ctx)
		if res.Err != nil {
			return res.Err
		}
		token = res.Token
	}

	err := fn(token)
	if err == nil || !errors.Is(err, drive.ErrUnauthorized) {
		return err
	}

	a.auth.Invalidate()
	res := <-a.auth.Request(ctx)
	if res.Err != nil {
		return res.Err
	}
	return fn(res.Token)
}
