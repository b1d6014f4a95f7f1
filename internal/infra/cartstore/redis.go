package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"rental-engine/internal/domain/cart"
	"rental-engine/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

// RedisCartStore keeps each customer's cart snapshot as JSON with a sliding TTL.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

func cartKey(customerID uuid.UUID) string {
	return cartKeyPrefix + customerID.String()
}

func (s *RedisCartStore) Load(ctx context.Context, customerID uuid.UUID) (*cart.Snapshot, error) {
	raw, err := s.client.Get(ctx, cartKey(customerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, unavailable(err, "failed to load cart")
	}

	var snap cart.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		slog.Warn("discarding undecodable cart",
			"customer_id", customerID.String(),
			"error", err.Error())
		return nil, nil
	}
	if snap.CustomerID != customerID {
		slog.Warn("discarding cart stored under another customer",
			"customer_id", customerID.String(),
			"stored_customer_id", snap.CustomerID.String())
		return nil, nil
	}
	return &snap, nil
}

func (s *RedisCartStore) Save(ctx context.Context, snap cart.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return errs.Wrap(err, "failed to encode cart")
	}
	if err := s.client.Set(ctx, cartKey(snap.CustomerID), raw, s.ttl).Err(); err != nil {
		return unavailable(err, "failed to save cart")
	}
	return nil
}

func (s *RedisCartStore) Delete(ctx context.Context, customerID uuid.UUID) error {
	if err := s.client.Del(ctx, cartKey(customerID)).Err(); err != nil {
		return unavailable(err, "failed to delete cart")
	}
	return nil
}

func unavailable(err error, msg string) error {
	slog.Error("Cart store error: "+msg, "error", err.Error())
	return errs.Mark(errs.Wrap(err, msg), errs.ErrDependencyUnavailable)
}
