package readstore

import (
	"context"

	"rental-engine/internal/infra"
	"rental-engine/internal/infra/db"
	"rental-engine/internal/pkg/pgconv"
	"rental-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

type WalletReadStore struct {
	db db.DBTX
}

func NewWalletReadStore(db db.DBTX) *WalletReadStore {
	return &WalletReadStore{db: db}
}

func (r *WalletReadStore) FindByUserID(ctx context.Context, userID uuid.UUID) (*queries.WalletView, error) {
	const query = `SELECT id, user_id, balance, currency, is_active FROM wallets WHERE user_id = $1`

	var (
		v  queries.WalletView
		id uuid.UUID
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&id, &v.UserID, pgconv.DecimalDest(&v.Balance), &v.Currency, &v.IsActive,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("wallet not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find wallet by user ID", err)
	}
	v.ID = &id
	return &v, nil
}

func (r *WalletReadStore) RecentTransactions(ctx context.Context, walletID uuid.UUID, limit int32) ([]queries.WalletTransactionView, error) {
	const query = `
SELECT id, type, amount, balance_before, balance_after, status, reference_type, reference_id, description, created_at
FROM wallet_transactions
WHERE wallet_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

	rows, err := r.db.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find wallet transactions", err)
	}
	defer rows.Close()

	result := []queries.WalletTransactionView{}
	for rows.Next() {
		var t queries.WalletTransactionView
		if err := rows.Scan(
			&t.ID, &t.Type, pgconv.DecimalDest(&t.Amount),
			pgconv.DecimalDest(&t.BalanceBefore), pgconv.DecimalDest(&t.BalanceAfter),
			&t.Status, &t.ReferenceType, &t.ReferenceID, &t.Description, &t.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan wallet transaction", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate wallet transactions", err)
	}
	return result, nil
}
