package bootstrap

import (
	"rental-engine/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	RedisModule,
	JWTModule,
	ClientsModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
)
