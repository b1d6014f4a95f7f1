//go:build unit

package invoice_test

import (
	"testing"
	"time"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/domain/invoice"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/testutil/builder"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

func issued(t *testing.T, o *order.Order) *invoice.Invoice {
	t.Helper()
	inv := invoice.NewForOrder(o, now)
	require.NoError(t, inv.Issue(now, 7))
	return inv
}

func TestNewForOrder(t *testing.T) {
	o := builder.NewOrderBuilder().Build()

	inv := invoice.NewForOrder(o, now)

	assert.Equal(t, invoice.StatusDraft, inv.Status())
	assert.Equal(t, o.ID(), inv.OrderID())
	assert.True(t, o.TotalAmount().Equal(inv.TotalAmount()))
	assert.True(t, o.TaxAmount().Equal(inv.TaxAmount()))
	require.Len(t, inv.Lines(), 1)
	assert.Equal(t, "DSLR Camera", inv.Lines()[0].Description)
	assert.Regexp(t, `^INV-20260305-[0-9A-F]{6}$`, inv.Number())
}

func TestInvoice_Issue(t *testing.T) {
	inv := issued(t, builder.NewOrderBuilder().Build())

	assert.Equal(t, invoice.StatusSent, inv.Status())
	require.NotNil(t, inv.DueDate())
	assert.Equal(t, now.AddDate(0, 0, 7), *inv.DueDate())
	assert.ErrorIs(t, inv.Issue(now, 7), invoice.ErrInvoiceNotDraft)
}

func TestInvoice_RecordPayment(t *testing.T) {
	t.Run("partial then paid", func(t *testing.T) {
		inv := issued(t, builder.NewOrderBuilder().Build())

		applied, err := inv.RecordPayment(builder.D("1000"), now)
		require.NoError(t, err)
		assert.True(t, builder.D("1000").Equal(applied))
		assert.Equal(t, invoice.StatusPartial, inv.Status())
		assert.Nil(t, inv.PaidAt())

		applied, err = inv.RecordPayment(builder.D("5000"), now)
		require.NoError(t, err)
		assert.True(t, builder.D("2840").Equal(applied), "overpayment is clamped")
		assert.Equal(t, invoice.StatusPaid, inv.Status())
		assert.NotNil(t, inv.PaidAt())
		assert.True(t, inv.PaidAmount().LessThanOrEqual(inv.TotalAmount()))
	})

	t.Run("paid amount equal to total marks the invoice paid", func(t *testing.T) {
		// subtotal 2830.51 at 18% tax, no deposit: 2830.51 + 509.49 = 3340
		o := builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) {
			b.Lines[0].TotalPrice = builder.D("2830.51")
			b.Policy.DepositRate = decimal.Zero
		}).Build()
		require.True(t, builder.D("3340").Equal(o.TotalAmount()))
		inv := issued(t, o)

		_, err := inv.RecordPayment(builder.D("3340"), now)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPaid, inv.Status())
	})

	t.Run("nothing due", func(t *testing.T) {
		inv := issued(t, builder.NewOrderBuilder().Build())
		_, err := inv.RecordPayment(inv.TotalAmount(), now)
		require.NoError(t, err)

		_, err = inv.RecordPayment(builder.D("1"), now)
		assert.ErrorIs(t, err, invoice.ErrNothingDue)
	})

	t.Run("cancelled invoice", func(t *testing.T) {
		inv := issued(t, builder.NewOrderBuilder().Build())
		inv.Cancel(now)

		_, err := inv.RecordPayment(builder.D("1"), now)
		assert.ErrorIs(t, err, invoice.ErrInvoiceCancelled)
		assert.True(t, inv.AmountDue().IsZero())
	})
}

func TestInvoice_Refund(t *testing.T) {
	inv := issued(t, builder.NewOrderBuilder().Build())
	_, err := inv.RecordPayment(builder.D("1000"), now)
	require.NoError(t, err)

	assert.ErrorIs(t, inv.Refund(builder.D("1000.01"), now), invoice.ErrRefundExceedsPaid)

	require.NoError(t, inv.Refund(builder.D("1000"), now))
	assert.True(t, inv.PaidAmount().IsZero())
	assert.Equal(t, invoice.StatusSent, inv.Status())
}

func TestInvoice_Rebase(t *testing.T) {
	setup := func(t *testing.T, fee string) (*order.Order, *invoice.Invoice, order.Outcome) {
		t.Helper()
		o := builder.NewOrderBuilder().BuildIn(order.StatusPickedUp)
		inv := issued(t, o)
		_, err := o.RecordPayment(o.TotalAmount(), now)
		require.NoError(t, err)
		_, err = inv.RecordPayment(o.TotalAmount(), now)
		require.NoError(t, err)

		lateFee := builder.D(fee)
		out, err := o.Apply(order.Command{
			Event:   order.EventMarkReturned,
			Actor:   actor.Actor{ID: o.VendorID(), Role: actor.RoleVendor},
			LateFee: &lateFee,
		}, now)
		require.NoError(t, err)
		return o, inv, out
	}

	t.Run("deposit refund keeps the invoice paid", func(t *testing.T) {
		o, inv, out := setup(t, "150")

		require.NoError(t, inv.Rebase(o, out.Refund, now))
		assert.True(t, builder.D("3690").Equal(inv.TotalAmount()))
		assert.True(t, builder.D("3690").Equal(inv.PaidAmount()))
		assert.True(t, builder.D("150").Equal(inv.LateFee()))
		assert.Equal(t, invoice.StatusPaid, inv.Status())
	})

	t.Run("fee above deposit reopens the balance", func(t *testing.T) {
		o, inv, out := setup(t, "450")

		require.NoError(t, inv.Rebase(o, out.Refund, now))
		assert.Equal(t, invoice.StatusPartial, inv.Status())
		assert.True(t, builder.D("150").Equal(inv.AmountDue()))
		assert.True(t, inv.AmountDue().Equal(o.AmountDue()))
	})

	t.Run("other order is rejected", func(t *testing.T) {
		_, inv, _ := setup(t, "0")
		other := builder.NewOrderBuilder().Build()

		assert.ErrorIs(t, inv.Rebase(other, decimal.Zero, now), invoice.ErrOrderMismatch)
	})
}
