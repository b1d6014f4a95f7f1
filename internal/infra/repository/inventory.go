package repository

import (
	"context"

	"rental-engine/internal/domain/catalog"
	"rental-engine/internal/infra"
	"rental-engine/internal/infra/db"
	"rental-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var errInsufficientStock = errs.Mark(errs.New("not enough units available"), errs.ErrInsufficientAvailability)

type InventoryRepository struct {
	db db.DBTX
}

func NewInventoryRepository(db db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Reserve decrements stock only if enough is left, so concurrent checkouts
// can never drive it negative.
func (r *InventoryRepository) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	const stmt = `
UPDATE products
SET available_quantity = available_quantity - $2, updated_at = now()
WHERE id = $1 AND available_quantity >= $2`

	tag, err := r.db.Exec(ctx, stmt, productID, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to reserve stock", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	exists, err := r.exists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return errs.Wrapf(catalog.ErrProductNotFound, "product %s", productID)
	}
	return errs.Wrapf(errInsufficientStock, "product %s, requested %d", productID, qty)
}

func (r *InventoryRepository) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	const stmt = `
UPDATE products
SET available_quantity = available_quantity + $2, updated_at = now()
WHERE id = $1`

	tag, err := r.db.Exec(ctx, stmt, productID, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to release stock", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Wrapf(catalog.ErrProductNotFound, "product %s", productID)
	}
	return nil
}

func (r *InventoryRepository) exists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check product", err)
	}
	return exists, nil
}
