package assist

import (
	"github.com/tvnrapp/relationship-os/internal/assist/service"
	"github.com/tvnrapp/relationship-os/internal/providers/ai"
	"go.uber.org/fx"
)

// Module wires the AI assistant and its completion client.
var Module = fx.Module("assist",
	fx.Provide(
		ai.NewClient,
		service.New,
	),
)
