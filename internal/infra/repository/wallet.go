package repository

import (
	"context"
	"time"

	"rental-engine/internal/domain/wallet"
	"rental-engine/internal/infra"
	"rental-engine/internal/infra/db"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletRepository struct {
	db db.DBTX
}

func NewWalletRepository(db db.DBTX) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetOrCreateForUpdate inserts an empty wallet if the user has none, then
// locks the row. ON CONFLICT keeps two first-time callers from racing.
func (r *WalletRepository) GetOrCreateForUpdate(ctx context.Context, userID uuid.UUID, currency string) (*wallet.Wallet, error) {
	const insert = `
INSERT INTO wallets (id, user_id, balance, currency, is_active, created_at, updated_at)
VALUES ($1, $2, 0, $3, TRUE, $4, $4)
ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, insert, uuid.New(), userID, currency, time.Now().UTC()); err != nil {
		return nil, infra.WrapRepoErr("failed to open wallet", err)
	}

	const query = `
SELECT id, user_id, balance, currency, is_active, created_at, updated_at
FROM wallets
WHERE user_id = $1
FOR UPDATE`

	var (
		id, owner            uuid.UUID
		balance              decimal.Decimal
		cur                  string
		active               bool
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&id, &owner, pgconv.DecimalDest(&balance), &cur, &active, &createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Wrapf(wallet.ErrWalletNotFound, "user %s", userID)
		}
		return nil, infra.WrapRepoErr("failed to lock wallet", err)
	}

	return wallet.Reconstruct(id, owner, balance, cur, active, createdAt, updatedAt), nil
}

func (r *WalletRepository) Save(ctx context.Context, w *wallet.Wallet, entry *wallet.Transaction) error {
	const update = `UPDATE wallets SET balance = $2, is_active = $3, updated_at = $4 WHERE id = $1`

	tag, err := r.db.Exec(ctx, update, w.ID(), pgconv.DecimalToNumeric(w.Balance()), w.IsActive(), w.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to update wallet", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Wrapf(wallet.ErrWalletNotFound, "wallet %s", w.ID())
	}

	if entry == nil {
		return nil
	}

	const insert = `
INSERT INTO wallet_transactions (
    id, wallet_id, type, amount, balance_before, balance_after, status,
    reference_type, reference_id, description, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.Exec(ctx, insert,
		entry.ID, entry.WalletID, string(entry.Type), pgconv.DecimalToNumeric(entry.Amount),
		pgconv.DecimalToNumeric(entry.BalanceBefore), pgconv.DecimalToNumeric(entry.BalanceAfter),
		string(entry.Status), string(entry.ReferenceType), entry.ReferenceID, entry.Description, entry.CreatedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to record wallet transaction", err)
	}
	return nil
}
