package api

import (
	"github.com/brizzai/dishom-client/internal/apispec"
	"go.uber.org/fx"
)

// Module provides the typed API client
var Module = fx.Options(
	fx.Provide(
		apispec.NewValidator,
		NewClient,
	),
)
