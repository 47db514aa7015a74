package chat

import (
	"github.com/tvnrapp/relationship-os/internal/chat/repository"
	"github.com/tvnrapp/relationship-os/internal/chat/service"
	"go.uber.org/fx"
)

// Module wires conversations.
var Module = fx.Module("chat",
	fx.Provide(
		repository.New,
		service.New,
	),
)
