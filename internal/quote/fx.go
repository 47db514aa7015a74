package quote

import (
	"github.com/tvnrapp/relationship-os/internal/quote/repository"
	"github.com/tvnrapp/relationship-os/internal/quote/service"
	"go.uber.org/fx"
)

// Module wires the quote domain.
var Module = fx.Module("quote",
	fx.Provide(
		repository.New,
		service.New,
	),
)
