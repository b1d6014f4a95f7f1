package bootstrap

import (
	"rental-engine/internal/handler/middleware"
	"rental-engine/internal/infra/clients"
	"rental-engine/internal/pkg/config"
	"rental-engine/internal/pkg/signature"
	"rental-engine/internal/usecase/shared"

	"go.uber.org/fx"
)

var ClientsModule = fx.Module("clients",
	fx.Provide(
		fx.Annotate(
			NewCouponOracle,
			fx.As(new(shared.CouponOracle)),
		),
		fx.Annotate(
			NewPaymentGateway,
			fx.As(new(shared.PaymentGateway)),
		),
		fx.Annotate(
			NewCallbackSigner,
			fx.As(new(middleware.PayloadVerifier)),
		),
	),
)

func NewCouponOracle(cfg config.Config) *clients.CouponOracleClient {
	return clients.NewCouponOracleClient(cfg.Clients.CouponOracleURL, cfg.Clients.Timeout)
}

func NewPaymentGateway(cfg config.Config) *clients.PaymentGatewayClient {
	return clients.NewPaymentGatewayClient(cfg.Clients.PaymentGatewayURL, cfg.Clients.PaymentGatewayKey, cfg.Clients.Timeout)
}

func NewCallbackSigner(cfg config.Config) (*signature.Signer, error) {
	return signature.NewSigner(cfg.Clients.PaymentCallbackSecret)
}
