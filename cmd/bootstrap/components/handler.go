package components

import (
	"rental-engine/internal/handler"
	"rental-engine/internal/handler/api"
	"rental-engine/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCartHandler,
		api.NewOrderHandler,
		api.NewPaymentHandler,
		api.NewWalletHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
