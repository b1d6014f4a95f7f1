//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"rental-engine/internal/domain/cart"
	"rental-engine/internal/domain/catalog"
	"rental-engine/internal/domain/pricing"
	"rental-engine/internal/pkg/clock"
	"rental-engine/internal/testutil/builder"
	sharedmock "rental-engine/internal/testutil/mock/shared"
	"rental-engine/internal/usecase/commands"
	"rental-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	now       = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rentStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func testSettings() commands.Settings {
	return commands.Settings{
		TaxRate:                  builder.D("0.18"),
		SecurityDepositRate:      builder.D("0.10"),
		Currency:                 "INR",
		AutoConfirmOnFullPayment: true,
		InvoiceDueDays:           7,
	}
}

// txMocks wires a MockUnitOfWork whose Within runs fn against mocked repositories.
type txMocks struct {
	uow       *sharedmock.MockUnitOfWork
	orders    *sharedmock.MockOrderRepository
	inventory *sharedmock.MockInventoryRepository
	invoices  *sharedmock.MockInvoiceRepository
	payments  *sharedmock.MockPaymentRepository
	wallets   *sharedmock.MockWalletRepository
}

func newTxMocks(ctrl *gomock.Controller) *txMocks {
	m := &txMocks{
		uow:       sharedmock.NewMockUnitOfWork(ctrl),
		orders:    sharedmock.NewMockOrderRepository(ctrl),
		inventory: sharedmock.NewMockInventoryRepository(ctrl),
		invoices:  sharedmock.NewMockInvoiceRepository(ctrl),
		payments:  sharedmock.NewMockPaymentRepository(ctrl),
		wallets:   sharedmock.NewMockWalletRepository(ctrl),
	}

	tx := sharedmock.NewMockTx(ctrl)
	tx.EXPECT().Orders().Return(m.orders).AnyTimes()
	tx.EXPECT().Inventory().Return(m.inventory).AnyTimes()
	tx.EXPECT().Invoices().Return(m.invoices).AnyTimes()
	tx.EXPECT().Payments().Return(m.payments).AnyTimes()
	tx.EXPECT().Wallets().Return(m.wallets).AnyTimes()

	m.uow.EXPECT().Within(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, tx)
		}).AnyTimes()
	return m
}

func testClock() clock.Clock {
	return clock.NewMockClock(now)
}

func dayLine(product *catalog.Product, days, qty int) commands.LineInput {
	return commands.LineInput{
		ProductID:  product.ID(),
		PeriodType: pricing.PeriodDay,
		Start:      rentStart,
		End:        rentStart.Add(time.Duration(days) * 24 * time.Hour),
		Quantity:   qty,
	}
}

// savedCart builds the snapshot a customer would have after adding lines.
func savedCart(t *testing.T, customerID uuid.UUID, lines ...commands.LineInput) *cart.Snapshot {
	t.Helper()
	snap := &cart.Snapshot{CustomerID: customerID, SavedAt: now}
	for _, in := range lines {
		snap.Lines = append(snap.Lines, cart.SnapshotLine{
			ProductID:  in.ProductID,
			VariantID:  in.VariantID,
			PeriodType: in.PeriodType,
			Start:      in.Start,
			End:        in.End,
			Quantity:   in.Quantity,
		})
	}
	require.NotEmpty(t, snap.Lines)
	return snap
}

func couponSnapshot(code, discount string) *cart.SnapshotCoupon {
	return &cart.SnapshotCoupon{
		Code:           code,
		DiscountType:   "fixed",
		DiscountValue:  builder.D(discount),
		DiscountAmount: builder.D(discount),
	}
}

var sharedCaptureHandle = shared.CaptureHandle{
	Reference:   "cap_0001",
	RedirectURL: "https://pay.example.test/cap_0001",
}
