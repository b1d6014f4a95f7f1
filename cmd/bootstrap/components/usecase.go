package components

import (
	"rental-engine/internal/domain/pricing"
	"rental-engine/internal/pkg/clock"
	"rental-engine/internal/usecase/commands"
	"rental-engine/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		pricing.NewDefaultCalculator,
		fx.As(new(pricing.Calculator)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCouponEngine,
		commands.NewCartUseCase,
		commands.NewPaymentUseCase,
		commands.NewCheckoutUseCase,
		commands.NewOrderLifecycle,
		commands.NewWalletUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewOrderQueries,
		queries.NewInvoiceQueries,
		func(store queries.WalletReadStore, s commands.Settings) queries.WalletQueries {
			return queries.NewWalletQueries(store, s.Currency)
		},
	),
)
