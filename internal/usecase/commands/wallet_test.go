//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"rental-engine/internal/domain/wallet"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/money"
	"rental-engine/internal/testutil/builder"
	"rental-engine/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestWalletCommands_TopUp(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("credits the wallet and records the entry", func(t *testing.T) {
		m := newTxMocks(gomock.NewController(t))
		uc := commands.NewWalletUseCase(m.uow, testSettings(), testClock())
		w := funds(userID, "250")
		m.wallets.EXPECT().GetOrCreateForUpdate(gomock.Any(), userID, "INR").Return(w, nil)
		m.wallets.EXPECT().Save(gomock.Any(), w, gomock.Any()).Return(nil)

		result, err := uc.TopUp(ctx, userID, builder.D("1000"), "")
		require.NoError(t, err)

		assert.Equal(t, w.ID(), result.WalletID)
		assert.True(t, builder.D("1250").Equal(result.Balance))
		assert.Equal(t, wallet.RefTopUp, result.Transaction.ReferenceType)
		assert.Equal(t, "Wallet top-up", result.Transaction.Description)
		assert.True(t, builder.D("250").Equal(result.Transaction.BalanceBefore))
		assert.True(t, builder.D("1250").Equal(result.Transaction.BalanceAfter))
	})

	t.Run("inactive wallet refuses top-ups", func(t *testing.T) {
		m := newTxMocks(gomock.NewController(t))
		uc := commands.NewWalletUseCase(m.uow, testSettings(), testClock())
		w := wallet.Reconstruct(uuid.New(), userID, builder.D("0"), "INR", false, now, now)
		m.wallets.EXPECT().GetOrCreateForUpdate(gomock.Any(), userID, "INR").Return(w, nil)

		_, err := uc.TopUp(ctx, userID, builder.D("1000"), "gift")
		assert.ErrorIs(t, err, wallet.ErrWalletInactive)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		m := newTxMocks(gomock.NewController(t))
		uc := commands.NewWalletUseCase(m.uow, testSettings(), testClock())

		_, err := uc.TopUp(ctx, userID, builder.D("-5"), "")
		assert.ErrorIs(t, err, wallet.ErrNonPositiveAmount)
	})

	t.Run("sub-cent amount never reaches the ledger", func(t *testing.T) {
		m := newTxMocks(gomock.NewController(t))
		uc := commands.NewWalletUseCase(m.uow, testSettings(), testClock())

		_, err := uc.TopUp(ctx, userID, builder.D("0.001"), "")
		assert.ErrorIs(t, err, money.ErrSubCentAmount)
		assert.True(t, errs.Is(err, errs.ErrValidation))
	})

	t.Run("store failure is surfaced", func(t *testing.T) {
		m := newTxMocks(gomock.NewController(t))
		uc := commands.NewWalletUseCase(m.uow, testSettings(), testClock())
		m.wallets.EXPECT().GetOrCreateForUpdate(gomock.Any(), userID, "INR").
			Return(nil, errs.Mark(errors.New("connection reset"), errs.ErrDependencyUnavailable))

		_, err := uc.TopUp(ctx, userID, builder.D("10"), "")
		assert.True(t, errs.Is(err, errs.ErrDependencyUnavailable))
	})
}

func TestWalletCommands_Withdraw(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("debits the wallet and records the entry", func(t *testing.T) {
		m := newTxMocks(gomock.NewController(t))
		uc := commands.NewWalletUseCase(m.uow, testSettings(), testClock())
		w := funds(userID, "800")
		m.wallets.EXPECT().GetOrCreateForUpdate(gomock.Any(), userID, "INR").Return(w, nil)
		m.wallets.EXPECT().Save(gomock.Any(), w, gomock.Any()).Return(nil)

		result, err := uc.Withdraw(ctx, userID, builder.D("250.50"), "")
		require.NoError(t, err)

		assert.True(t, builder.D("549.50").Equal(result.Balance))
		assert.Equal(t, wallet.TxDebit, result.Transaction.Type)
		assert.Equal(t, wallet.RefWithdrawal, result.Transaction.ReferenceType)
		assert.Equal(t, "Withdrawal request", result.Transaction.Description)
		assert.True(t, builder.D("800").Equal(result.Transaction.BalanceBefore))
	})

	t.Run("cannot withdraw more than the balance", func(t *testing.T) {
		m := newTxMocks(gomock.NewController(t))
		uc := commands.NewWalletUseCase(m.uow, testSettings(), testClock())
		w := funds(userID, "100")
		m.wallets.EXPECT().GetOrCreateForUpdate(gomock.Any(), userID, "INR").Return(w, nil)

		_, err := uc.Withdraw(ctx, userID, builder.D("100.01"), "payout")
		assert.True(t, errs.Is(err, errs.ErrInsufficientWalletBalance))
		assert.True(t, builder.D("100").Equal(w.Balance()))
	})

	t.Run("sub-cent amount", func(t *testing.T) {
		m := newTxMocks(gomock.NewController(t))
		uc := commands.NewWalletUseCase(m.uow, testSettings(), testClock())

		_, err := uc.Withdraw(ctx, userID, builder.D("10.005"), "")
		assert.ErrorIs(t, err, money.ErrSubCentAmount)
	})
}
