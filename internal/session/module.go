package session

import (
	"context"

	"github.com/brizzai/dishom-client/internal/tokenstore"
	"go.uber.org/fx"
)

// Module provides the process wide session and hydrates it on start
var Module = fx.Module("session",
	fx.Provide(
		New,
		func(store *tokenstore.Store) UserStore { return store },
	),
	fx.Invoke(registerHydration),
)

func registerHydration(lc fx.Lifecycle, s *Session) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.Hydrate(ctx)
			return nil
		},
	})
}
