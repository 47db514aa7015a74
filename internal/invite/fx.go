package invite

import (
	"github.com/tvnrapp/relationship-os/internal/invite/repository"
	"github.com/tvnrapp/relationship-os/internal/invite/service"
	"github.com/tvnrapp/relationship-os/internal/providers/email"
	"go.uber.org/fx"
)

// Module wires the invite workflow.
var Module = fx.Module("invite",
	email.Module,
	fx.Provide(
		repository.New,
		service.New,
	),
)
