package dashboard

import (
	"github.com/tvnrapp/relationship-os/internal/dashboard/repository"
	"github.com/tvnrapp/relationship-os/internal/dashboard/service"
	"go.uber.org/fx"
)

// Module wires the read-side aggregation views.
var Module = fx.Module("dashboard",
	fx.Provide(
		repository.New,
		service.New,
	),
)
