package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rsvphub/internal/config"
	"rsvphub/internal/gateway"
	"rsvphub/internal/session"
)

var (
	errNoSession   = errors.New("no active session, run `rsvpctl login` first")
	errNoCommunity = errors.New("no community selected, run `rsvpctl community use <code>` first")
)

// App bundles the pieces every command needs. The local database is always
// open: in local mode it is the gateway, in remote mode it still persists the
// session snapshot between invocations.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  gateway.Store
	local  *gateway.Local
	remote *gateway.Remote
	guard  *session.Guard
}

func newApp(opts *RootOptions) (*App, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}

	local, err := gateway.OpenLocal(cfg.Client.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	app := &App{cfg: cfg, logger: logger, local: local}
	switch cfg.Client.Mode {
	case "local":
		app.store = local
	case "remote":
		app.remote = gateway.NewRemote(cfg.Client.APIURL, logger)
		app.store = app.remote
	default:
		local.Close()
		return nil, fmt.Errorf("unknown client mode %q", cfg.Client.Mode)
	}

	app.guard = session.NewGuard(local, cfg.Session.InactivityTimeout, func() {
		fmt.Fprintln(os.Stderr, "session expired due to inactivity")
	})
	return app, nil
}

func (a *App) Close() error {
	_ = a.logger.Sync()
	return a.local.Close()
}

// resumeSession restores the persisted session and counts this command as
// activity. In remote mode the stored bearer token is installed on the
// client.
func (a *App) resumeSession(ctx context.Context) (*session.Snapshot, error) {
	snap, err := a.guard.Resume(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	if snap == nil {
		return nil, errNoSession
	}
	if a.remote != nil && snap.Token != "" {
		a.remote.SetToken(snap.Token)
	}
	return snap, nil
}

// requireCommunity is resumeSession plus a selected community.
func (a *App) requireCommunity(ctx context.Context) (*session.Snapshot, error) {
	snap, err := a.resumeSession(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Community == nil {
		return nil, errNoCommunity
	}
	return snap, nil
}

// withApp wraps a command body with app setup and teardown.
func withApp(opts *RootOptions, run func(ctx context.Context, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newApp(opts)
		if err != nil {
			return err
		}
		defer app.Close()
		return run(cmd.Context(), app, args)
	}
}
