package checkout

import (
	"github.com/tvnrapp/relationship-os/internal/checkout/service"
	"github.com/tvnrapp/relationship-os/internal/providers/payment"
	"go.uber.org/fx"
)

// Module wires the hosted checkout flow.
var Module = fx.Module("checkout",
	fx.Provide(
		payment.NewClient,
		service.New,
	),
)
