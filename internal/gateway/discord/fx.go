package discord

import "go.uber.org/fx"

var Module = fx.Module("gateway.discord",
	fx.Provide(
		NewSession,
		NewGateway,
	),
	fx.Invoke(register),
)
