package queries

//go:generate mockgen -source=wallet.go -destination=../../testutil/mock/queries/wallet.go -package=queriesmock

import (
	"context"

	"rental-engine/internal/infra"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletReadStore interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*WalletView, error)
	RecentTransactions(ctx context.Context, walletID uuid.UUID, limit int32) ([]WalletTransactionView, error)
}

type WalletQueries interface {
	// Get returns the user's wallet with its newest ledger entries. A user
	// without a wallet sees an empty, active one.
	Get(ctx context.Context, userID uuid.UUID, txLimit int) (*WalletView, error)
}

type walletQueriesImpl struct {
	store    WalletReadStore
	currency string
}

func NewWalletQueries(store WalletReadStore, currency string) WalletQueries {
	return &walletQueriesImpl{store: store, currency: currency}
}

func (q *walletQueriesImpl) Get(ctx context.Context, userID uuid.UUID, txLimit int) (*WalletView, error) {
	wv, err := q.store.FindByUserID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &WalletView{
				UserID:       userID,
				Balance:      decimal.Zero,
				Currency:     q.currency,
				IsActive:     true,
				Transactions: []WalletTransactionView{},
			}, nil
		}
		return nil, err
	}

	txs, err := q.store.RecentTransactions(ctx, *wv.ID, int32(ValidateLimit(txLimit)))
	if err != nil {
		return nil, err
	}
	wv.Transactions = txs
	return wv, nil
}
