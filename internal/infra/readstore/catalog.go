package readstore

import (
	"context"

	"rental-engine/internal/domain/catalog"
	"rental-engine/internal/infra"
	"rental-engine/internal/infra/db"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogReadStore struct {
	db db.DBTX
}

func NewCatalogReadStore(db db.DBTX) *CatalogReadStore {
	return &CatalogReadStore{db: db}
}

// GetProduct loads a product with its tiers, variants and live stock.
func (r *CatalogReadStore) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	const query = `
SELECT vendor_id, name, rentable, hourly_price, daily_price, weekly_price,
       custom_period_days, custom_period_price, available_quantity
FROM products
WHERE id = $1`

	var (
		vendorID    uuid.UUID
		name        string
		rentable    bool
		tiers       catalog.Tiers
		customDays  *int
		customPrice *decimal.Decimal
		available   int
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&vendorID, &name, &rentable,
		pgconv.DecimalPtrDest(&tiers.Hourly), pgconv.DecimalPtrDest(&tiers.Daily), pgconv.DecimalPtrDest(&tiers.Weekly),
		&customDays, pgconv.DecimalPtrDest(&customPrice), &available,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Wrapf(catalog.ErrProductNotFound, "product %s", id)
		}
		return nil, infra.WrapRepoErr("failed to find product", err)
	}
	if customDays != nil && customPrice != nil {
		tiers.Custom = &catalog.CustomPeriod{Days: *customDays, Price: *customPrice}
	}

	variants, err := r.variants(ctx, id)
	if err != nil {
		return nil, err
	}

	return catalog.NewProduct(id, vendorID, name, rentable, tiers, available, variants)
}

func (r *CatalogReadStore) variants(ctx context.Context, productID uuid.UUID) ([]catalog.Variant, error) {
	const query = `
SELECT id, name, price_modifier
FROM product_variants
WHERE product_id = $1
ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find product variants", err)
	}
	defer rows.Close()

	var variants []catalog.Variant
	for rows.Next() {
		var v catalog.Variant
		if err := rows.Scan(&v.ID, &v.Name, pgconv.DecimalDest(&v.PriceModifier)); err != nil {
			return nil, infra.WrapRepoErr("failed to scan product variant", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate product variants", err)
	}
	return variants, nil
}
