package bootstrap

import (
	"context"
	"log/slog"

	"rental-engine/internal/infra/db"
	"rental-engine/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			stat := pool.Stat()
			slog.Info("Database pool ready",
				"host", cfg.DB.Host,
				"database", cfg.DB.DBName,
				"max_conns", stat.MaxConns())
			return nil
		},
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}
