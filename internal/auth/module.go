package auth

import "go.uber.org/fx"

// Module provides the account flows
var Module = fx.Options(
	fx.Provide(NewService),
)
