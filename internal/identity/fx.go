package identity

import (
	"github.com/tvnrapp/relationship-os/internal/identity/repository"
	"github.com/tvnrapp/relationship-os/internal/identity/service"
	"github.com/tvnrapp/relationship-os/internal/identity/sso"
	"github.com/tvnrapp/relationship-os/internal/identity/token"
	"go.uber.org/fx"
)

// Module wires the identity domain.
var Module = fx.Module("identity",
	fx.Provide(
		repository.New,
		token.NewManager,
		sso.NewVerifier,
		service.New,
	),
)
