package components

import (
	"rental-engine/internal/infra/cartstore"
	"rental-engine/internal/infra/db"
	"rental-engine/internal/infra/readstore"
	"rental-engine/internal/infra/uow"
	"rental-engine/internal/pkg/config"
	"rental-engine/internal/usecase/queries"
	"rental-engine/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Catalog
		fx.Annotate(
			readstore.NewCatalogReadStore,
			fx.As(new(shared.CatalogReader)),
		),
		// Order
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderReadStore)),
		),
		// Invoice
		fx.Annotate(
			readstore.NewInvoiceReadStore,
			fx.As(new(queries.InvoiceReadStore)),
		),
		// Wallet
		fx.Annotate(
			readstore.NewWalletReadStore,
			fx.As(new(queries.WalletReadStore)),
		),
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		// UnitOfWork
		uow.NewPostgresUoW,
		// Cart
		fx.Annotate(
			NewCartStore,
			fx.As(new(shared.CartStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewCartStore(client *redis.Client, cfg config.Config) *cartstore.RedisCartStore {
	return cartstore.NewRedisCartStore(client, cfg.Redis.CartTTL)
}
