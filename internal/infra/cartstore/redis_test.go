//go:build integration

package cartstore

import (
	"context"
	"testing"
	"time"

	"rental-engine/internal/domain/cart"
	"rental-engine/internal/domain/pricing"
	"rental-engine/internal/testutil/dbtest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot(customerID uuid.UUID) cart.Snapshot {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	variant := uuid.New()
	maxDiscount := decimal.RequireFromString("500")
	return cart.Snapshot{
		CustomerID: customerID,
		Lines: []cart.SnapshotLine{
			{ProductID: uuid.New(), PeriodType: pricing.PeriodDay, Start: start, End: start.Add(72 * time.Hour), Quantity: 2},
			{ProductID: uuid.New(), VariantID: &variant, PeriodType: pricing.PeriodHour, Start: start, End: start.Add(5 * time.Hour), Quantity: 1},
		},
		Coupon: &cart.SnapshotCoupon{
			Code:              "SAVE10",
			DiscountType:      "percentage",
			DiscountValue:     decimal.RequireFromString("10"),
			DiscountAmount:    decimal.RequireFromString("354"),
			OrderAmount:       decimal.RequireFromString("3540"),
			FinalAmount:       decimal.RequireFromString("3186"),
			MaxDiscountAmount: &maxDiscount,
		},
		SavedAt: start.Add(-time.Hour),
	}
}

func TestRedisCartStore(t *testing.T) {
	client := dbtest.NewRedisClient(t)
	store := NewRedisCartStore(client, time.Hour)
	ctx := context.Background()
	decimalEqual := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

	t.Run("missing cart loads as nil", func(t *testing.T) {
		snap, err := store.Load(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("save then load", func(t *testing.T) {
		customer := uuid.New()
		want := sampleSnapshot(customer)
		require.NoError(t, store.Save(ctx, want))

		got, err := store.Load(ctx, customer)
		require.NoError(t, err)
		require.NotNil(t, got)
		if diff := cmp.Diff(want, *got, decimalEqual); diff != "" {
			t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
		}

		ttl, err := client.TTL(ctx, cartKey(customer)).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)
	})

	t.Run("delete", func(t *testing.T) {
		customer := uuid.New()
		require.NoError(t, store.Save(ctx, sampleSnapshot(customer)))
		require.NoError(t, store.Delete(ctx, customer))

		got, err := store.Load(ctx, customer)
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, store.Delete(ctx, customer), "deleting an absent cart is not an error")
	})

	t.Run("corrupt payload is discarded", func(t *testing.T) {
		customer := uuid.New()
		require.NoError(t, client.Set(ctx, cartKey(customer), "{not json", time.Hour).Err())

		got, err := store.Load(ctx, customer)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("payload of another customer is discarded", func(t *testing.T) {
		customer := uuid.New()
		other := sampleSnapshot(uuid.New())
		require.NoError(t, store.Save(ctx, other))
		raw, err := client.Get(ctx, cartKey(other.CustomerID)).Bytes()
		require.NoError(t, err)
		require.NoError(t, client.Set(ctx, cartKey(customer), raw, time.Hour).Err())

		got, err := store.Load(ctx, customer)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
