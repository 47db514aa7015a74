package subscription

import (
	"github.com/tvnrapp/relationship-os/internal/subscription/repository"
	"github.com/tvnrapp/relationship-os/internal/subscription/service"
	"go.uber.org/fx"
)

// Module wires the subscription domain.
var Module = fx.Module("subscription",
	fx.Provide(
		repository.New,
		service.New,
	),
)
