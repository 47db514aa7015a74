package authorization

import "go.uber.org/fx"

// Module wires the casbin enforcer and capability checks.
var Module = fx.Module("authorization",
	fx.Provide(
		NewEnforcer,
		NewService,
	),
)
