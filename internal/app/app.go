// Package app assembles the client stack with fx.
package app

import (
	"context"
	"fmt"

	"github.com/brizzai/dishom-client/internal/api"
	"github.com/brizzai/dishom-client/internal/auth"
	"github.com/brizzai/dishom-client/internal/config"
	"github.com/brizzai/dishom-client/internal/logger"
	"github.com/brizzai/dishom-client/internal/requester"
	"github.com/brizzai/dishom-client/internal/server"
	"github.com/brizzai/dishom-client/internal/session"
	"github.com/brizzai/dishom-client/internal/tokenstore"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// Options returns every module of the client for cfg
func Options(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg, &cfg.Endpoint, &cfg.Refresh, &cfg.Server, &cfg.Logging),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.GetLogger()}
		}),
		tokenstore.Module,
		requester.Module,
		api.Module,
		session.Module,
		auth.Module,
		server.Module,
	)
}

// New builds the application, extra carries command specific options
func New(cfg *config.Config, extra ...fx.Option) *fx.App {
	return fx.New(
		Options(cfg),
		fx.Options(extra...),
	)
}

// Start builds and starts the application, filling targets like fx.Populate
// does. The session is hydrated once Start returns. Callers stop the app.
func Start(ctx context.Context, cfg *config.Config, targets ...any) (*fx.App, error) {
	a := New(cfg, fx.Populate(targets...))
	if err := a.Err(); err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}
	if err := a.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start application: %w", err)
	}
	return a, nil
}
