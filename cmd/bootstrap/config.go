package bootstrap

import (
	"rental-engine/internal/pkg/config"
	"rental-engine/internal/usecase/commands"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		NewSettings,
	),
)

func NewSettings(cfg config.Config) commands.Settings {
	return commands.Settings{
		TaxRate:                  cfg.Pricing.TaxRate,
		SecurityDepositRate:      cfg.Pricing.SecurityDepositRate,
		Currency:                 cfg.Pricing.Currency,
		AutoConfirmOnFullPayment: cfg.Order.AutoConfirmOnFullPayment,
		InvoiceDueDays:           cfg.Order.InvoiceDueDays,
	}
}
