package requester

import (
	"github.com/brizzai/dishom-client/internal/tokenstore"
	"go.uber.org/fx"
)

// Module provides the requester module dependencies
var Module = fx.Options(
	fx.Provide(
		NewClient,
		func(store *tokenstore.Store) TokenStore { return store },
	),
)
