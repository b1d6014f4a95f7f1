package commands

//go:generate mockgen -source=wallet.go -destination=../../testutil/mock/commands/wallet.go -package=commandsmock

import (
	"context"
	"log/slog"

	"rental-engine/internal/domain/wallet"
	"rental-engine/internal/pkg/clock"
	"rental-engine/internal/pkg/money"
	"rental-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletEntryResult is the wallet after one customer-initiated ledger entry.
type WalletEntryResult struct {
	WalletID    uuid.UUID
	Balance     decimal.Decimal
	Transaction *wallet.Transaction
}

type WalletCommands interface {
	TopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*WalletEntryResult, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*WalletEntryResult, error)
}

type walletUseCaseImpl struct {
	uow      shared.UnitOfWork
	settings Settings
	clock    clock.Clock
}

func NewWalletUseCase(uow shared.UnitOfWork, settings Settings, clk clock.Clock) WalletCommands {
	return &walletUseCaseImpl{uow: uow, settings: settings, clock: clk}
}

func (uc *walletUseCaseImpl) TopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*WalletEntryResult, error) {
	if description == "" {
		description = "Wallet top-up"
	}
	result, err := uc.post(ctx, userID, amount, func(w *wallet.Wallet) (*wallet.Transaction, error) {
		return w.Credit(amount, wallet.Reference{Type: wallet.RefTopUp, Description: description}, uc.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "wallet topped up", "user_id", userID, "amount", amount.String(), "balance", result.Balance.String())
	return result, nil
}

// Withdraw pays money out of the caller's own wallet through the same debit
// ledger path as wallet payments.
func (uc *walletUseCaseImpl) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*WalletEntryResult, error) {
	if description == "" {
		description = "Withdrawal request"
	}
	result, err := uc.post(ctx, userID, amount, func(w *wallet.Wallet) (*wallet.Transaction, error) {
		return w.Debit(amount, wallet.Reference{Type: wallet.RefWithdrawal, Description: description}, uc.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "wallet withdrawal", "user_id", userID, "amount", amount.String(), "balance", result.Balance.String())
	return result, nil
}

// post locks the user's wallet, appends one entry and saves both in one transaction.
func (uc *walletUseCaseImpl) post(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	entryFn func(w *wallet.Wallet) (*wallet.Transaction, error),
) (*WalletEntryResult, error) {
	if !amount.IsPositive() {
		return nil, wallet.ErrNonPositiveAmount
	}
	if err := money.CheckCents(amount); err != nil {
		return nil, err
	}

	var result *WalletEntryResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		w, derr := tx.Wallets().GetOrCreateForUpdate(ctx, userID, uc.settings.Currency)
		if derr != nil {
			return derr
		}
		entry, derr := entryFn(w)
		if derr != nil {
			return derr
		}
		if derr = tx.Wallets().Save(ctx, w, entry); derr != nil {
			return derr
		}
		result = &WalletEntryResult{WalletID: w.ID(), Balance: w.Balance(), Transaction: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
