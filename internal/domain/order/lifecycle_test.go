//go:build unit

package order_test

import (
	"testing"
	"time"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/testutil/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

func vendorOf(o *order.Order) actor.Actor {
	return actor.Actor{ID: o.VendorID(), Role: actor.RoleVendor}
}

func customerOf(o *order.Order) actor.Actor {
	return actor.Actor{ID: o.CustomerID(), Role: actor.RoleCustomer}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNewOrder_Totals(t *testing.T) {
	t.Run("total is subtotal plus tax plus deposit", func(t *testing.T) {
		o := builder.NewOrderBuilder().Build()

		assert.Equal(t, order.StatusPending, o.Status())
		assert.True(t, builder.D("3000").Equal(o.Subtotal()))
		assert.True(t, builder.D("540").Equal(o.TaxAmount()))
		assert.True(t, builder.D("300").Equal(o.SecurityDeposit()))
		assert.True(t, builder.D("3840").Equal(o.TotalAmount()))
		assert.True(t, builder.D("3840").Equal(o.AmountDue()))
		assert.Regexp(t, `^ORD-\d{14}-[0-9A-F]{4}$`, o.Number())
	})

	t.Run("coupon discount is subtracted from the total", func(t *testing.T) {
		o := builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) {
			b.Coupon = &coupon.Result{Code: "FLAT200", DiscountType: coupon.DiscountFixed, DiscountAmount: builder.D("200")}
		}).Build()

		assert.True(t, builder.D("200").Equal(o.DiscountAmount()))
		assert.True(t, builder.D("3640").Equal(o.TotalAmount()))
		require.NotNil(t, o.CouponCode())
		assert.Equal(t, "FLAT200", *o.CouponCode())
	})

	t.Run("lines are copied, not shared", func(t *testing.T) {
		b := builder.NewOrderBuilder()
		o := b.Build()
		b.Lines[0].TotalPrice = builder.D("1")

		assert.True(t, builder.D("3000").Equal(o.Lines()[0].TotalPrice))
	})

	testCases := []struct {
		name   string
		mutate func(*builder.OrderBuilder)
		kind   error
	}{
		{name: "no lines", mutate: func(b *builder.OrderBuilder) { b.Lines = nil }, kind: errs.ErrValidation},
		{name: "blank address", mutate: func(b *builder.OrderBuilder) { b.DeliveryAddress = "  " }, kind: errs.ErrValidation},
		{name: "unknown payment method", mutate: func(b *builder.OrderBuilder) { b.PaymentMethod = "barter" }, kind: errs.ErrValidation},
		{name: "negative tax rate", mutate: func(b *builder.OrderBuilder) { b.Policy.TaxRate = builder.D("-0.1") }, kind: errs.ErrValidation},
		{name: "zero quantity line", mutate: func(b *builder.OrderBuilder) { b.Lines[0].Quantity = 0 }, kind: errs.ErrInvalidQuantity},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewOrderBuilder().With(tc.mutate)
			_, err := order.NewOrder(order.NewOrderParams{
				CustomerID:      b.CustomerID,
				VendorID:        b.VendorID,
				Lines:           b.Lines,
				DeliveryAddress: b.DeliveryAddress,
				PaymentMethod:   b.PaymentMethod,
			}, b.Policy, b.Now)
			require.Error(t, err)
			assert.True(t, errs.Is(err, tc.kind), "got %v", err)
		})
	}
}

func TestOrder_TransitionTable(t *testing.T) {
	allEvents := []order.Event{
		order.EventConfirm, order.EventSchedulePickup, order.EventMarkPickedUp,
		order.EventMarkReturned, order.EventCancel,
	}
	allowed := map[order.Status]map[order.Event]order.Status{
		order.StatusPending: {
			order.EventConfirm: order.StatusConfirmed,
			order.EventCancel:  order.StatusCancelled,
		},
		order.StatusConfirmed: {
			order.EventSchedulePickup: order.StatusConfirmed,
			order.EventMarkPickedUp:   order.StatusPickedUp,
			order.EventCancel:         order.StatusCancelled,
		},
		order.StatusPickedUp: {
			order.EventMarkReturned: order.StatusCompleted,
		},
		order.StatusCompleted: {},
		order.StatusCancelled: {},
	}

	for from, events := range allowed {
		for _, ev := range allEvents {
			t.Run(from.String()+"/"+ev.String(), func(t *testing.T) {
				o := builder.NewOrderBuilder().BuildIn(from)
				cmd := order.Command{Event: ev, Actor: vendorOf(o), PickupDate: &now}

				out, err := o.Apply(cmd, now)

				want, ok := events[ev]
				if !ok {
					require.Error(t, err)
					assert.True(t, errs.Is(err, errs.ErrInvalidStateTransition))
					var te *order.TransitionError
					require.ErrorAs(t, err, &te)
					assert.Equal(t, from, te.From)
					assert.NotEmpty(t, te.To)
					assert.Contains(t, err.Error(), string(from))
					assert.Equal(t, from, o.Status(), "rejected event must not change the status")
					return
				}
				require.NoError(t, err)
				assert.Equal(t, from, out.From)
				assert.Equal(t, want, out.To)
				assert.Equal(t, want, o.Status())
			})
		}
	}
}

func TestOrder_Apply(t *testing.T) {
	t.Run("schedule pickup keeps status and sets the date", func(t *testing.T) {
		o := builder.NewOrderBuilder().BuildIn(order.StatusConfirmed)
		pickup := now.Add(24 * time.Hour)

		out, err := o.Apply(order.Command{Event: order.EventSchedulePickup, Actor: vendorOf(o), PickupDate: &pickup}, now)
		require.NoError(t, err)
		assert.Equal(t, order.StatusConfirmed, out.To)
		require.NotNil(t, o.PickupDate())
		assert.Equal(t, pickup, *o.PickupDate())
	})

	t.Run("schedule pickup requires a date", func(t *testing.T) {
		o := builder.NewOrderBuilder().BuildIn(order.StatusConfirmed)

		_, err := o.Apply(order.Command{Event: order.EventSchedulePickup, Actor: vendorOf(o)}, now)
		assert.ErrorIs(t, err, order.ErrPickupDateMissing)
	})

	t.Run("picked up defaults the pickup date to now", func(t *testing.T) {
		o := builder.NewOrderBuilder().BuildIn(order.StatusConfirmed)

		_, err := o.Apply(order.Command{Event: order.EventMarkPickedUp, Actor: vendorOf(o)}, now)
		require.NoError(t, err)
		require.NotNil(t, o.PickupDate())
		assert.Equal(t, now, *o.PickupDate())
	})

	t.Run("pending cannot skip to picked up", func(t *testing.T) {
		o := builder.NewOrderBuilder().Build()

		_, err := o.Apply(order.Command{Event: order.EventMarkPickedUp, Actor: vendorOf(o)}, now)
		var te *order.TransitionError
		require.ErrorAs(t, err, &te)
		if diff := cmp.Diff(order.TransitionError{From: order.StatusPending, Event: order.EventMarkPickedUp, To: order.StatusPickedUp}, *te); diff != "" {
			t.Errorf("transition error mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("cancel releases inventory and refunds collected money", func(t *testing.T) {
		o := builder.NewOrderBuilder().BuildIn(order.StatusConfirmed)
		_, err := o.RecordPayment(builder.D("1000"), now)
		require.NoError(t, err)

		out, err := o.Apply(order.Command{Event: order.EventCancel, Actor: customerOf(o)}, now)
		require.NoError(t, err)
		assert.True(t, out.ReleaseInventory)
		assert.True(t, builder.D("1000").Equal(out.Refund))
		assert.True(t, o.NetPaid().IsZero())
		assert.True(t, o.AmountDue().IsZero())
		assert.NotNil(t, o.CancelledAt())
	})

	t.Run("customer cannot confirm", func(t *testing.T) {
		o := builder.NewOrderBuilder().Build()

		_, err := o.Apply(order.Command{Event: order.EventConfirm, Actor: customerOf(o)}, now)
		assert.True(t, errs.Is(err, errs.ErrForbidden))
		assert.Equal(t, order.StatusPending, o.Status())
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		o := builder.NewOrderBuilder().Build()

		_, err := o.Apply(order.Command{Event: order.EventCancel, Actor: actor.Actor{ID: uuid.New(), Role: actor.RoleCustomer}}, now)
		assert.True(t, errs.Is(err, errs.ErrForbidden))
	})

	t.Run("admin may drive any event", func(t *testing.T) {
		o := builder.NewOrderBuilder().Build()

		_, err := o.Apply(order.Command{Event: order.EventConfirm, Actor: actor.System()}, now)
		require.NoError(t, err)
	})

	t.Run("unknown event", func(t *testing.T) {
		o := builder.NewOrderBuilder().Build()

		_, err := o.Apply(order.Command{Event: "teleport", Actor: vendorOf(o)}, now)
		assert.ErrorIs(t, err, order.ErrUnknownEvent)
	})
}

func TestOrder_ReturnSettlement(t *testing.T) {
	fullyPaid := func(t *testing.T) *order.Order {
		t.Helper()
		o := builder.NewOrderBuilder().BuildIn(order.StatusPickedUp)
		_, err := o.RecordPayment(o.TotalAmount(), now)
		require.NoError(t, err)
		return o
	}

	t.Run("late fee 150 against deposit 300 refunds 150", func(t *testing.T) {
		o := fullyPaid(t)

		out, err := o.Apply(order.Command{Event: order.EventMarkReturned, Actor: vendorOf(o), LateFee: decimalPtr("150")}, now)
		require.NoError(t, err)
		assert.Equal(t, order.StatusCompleted, out.To)
		require.NotNil(t, out.Settlement)
		assert.True(t, builder.D("150").Equal(out.Settlement.RefundableDeposit))
		assert.True(t, builder.D("150").Equal(out.Settlement.Refund))
		assert.True(t, out.Settlement.AdditionalDue.IsZero())
		// total = 3000 + 540 + 300 + 150
		assert.True(t, builder.D("3990").Equal(o.TotalAmount()))
		assert.True(t, o.AmountDue().IsZero())
		require.NotNil(t, o.ReturnDate())
	})

	t.Run("late fee above deposit surfaces the excess as due", func(t *testing.T) {
		o := fullyPaid(t)

		out, err := o.Apply(order.Command{Event: order.EventMarkReturned, Actor: vendorOf(o), LateFee: decimalPtr("450")}, now)
		require.NoError(t, err)
		assert.True(t, out.Settlement.RefundableDeposit.IsZero())
		assert.True(t, out.Settlement.Refund.IsZero())
		assert.True(t, builder.D("150").Equal(out.Settlement.AdditionalDue))
		assert.True(t, builder.D("150").Equal(o.AmountDue()))

		applied, err := o.RecordPayment(builder.D("500"), now)
		require.NoError(t, err)
		assert.True(t, builder.D("150").Equal(applied))
		assert.True(t, o.IsFullyPaid())
	})

	t.Run("no late fee refunds the whole deposit", func(t *testing.T) {
		o := fullyPaid(t)

		out, err := o.Apply(order.Command{Event: order.EventMarkReturned, Actor: vendorOf(o)}, now)
		require.NoError(t, err)
		assert.True(t, builder.D("300").Equal(out.Settlement.Refund))
		require.NotNil(t, o.LateFee())
		assert.True(t, o.LateFee().IsZero())
	})

	t.Run("unpaid order owes rent and fee after return", func(t *testing.T) {
		o := builder.NewOrderBuilder().BuildIn(order.StatusPickedUp)

		out, err := o.Apply(order.Command{Event: order.EventMarkReturned, Actor: vendorOf(o), LateFee: decimalPtr("100")}, now)
		require.NoError(t, err)
		assert.True(t, out.Settlement.Refund.IsZero())
		assert.True(t, builder.D("3640").Equal(out.Settlement.AdditionalDue))
	})

	t.Run("negative late fee is rejected without side effects", func(t *testing.T) {
		o := fullyPaid(t)

		_, err := o.Apply(order.Command{Event: order.EventMarkReturned, Actor: vendorOf(o), LateFee: decimalPtr("-1")}, now)
		assert.ErrorIs(t, err, order.ErrNegativeLateFee)
		assert.Equal(t, order.StatusPickedUp, o.Status())
		assert.Nil(t, o.LateFee())
	})

	t.Run("return before pickup is rejected", func(t *testing.T) {
		o := fullyPaid(t)
		early := o.PickupDate().Add(-time.Hour)

		_, err := o.Apply(order.Command{Event: order.EventMarkReturned, Actor: vendorOf(o), ReturnDate: &early}, now)
		assert.ErrorIs(t, err, order.ErrReturnBeforePick)
	})

	t.Run("completed order accepts no further events", func(t *testing.T) {
		o := fullyPaid(t)
		_, err := o.Apply(order.Command{Event: order.EventMarkReturned, Actor: vendorOf(o)}, now)
		require.NoError(t, err)

		for _, ev := range []order.Event{order.EventConfirm, order.EventCancel, order.EventMarkReturned} {
			_, err = o.Apply(order.Command{Event: ev, Actor: vendorOf(o), PickupDate: &now}, now)
			assert.True(t, errs.Is(err, errs.ErrInvalidStateTransition), "event %s", ev)
		}
	})
}

func TestOrder_RecordPayment(t *testing.T) {
	t.Run("overpayment is clamped to the amount due", func(t *testing.T) {
		o := builder.NewOrderBuilder().Build()

		applied, err := o.RecordPayment(builder.D("10000"), now)
		require.NoError(t, err)
		assert.True(t, builder.D("3840").Equal(applied))
		assert.True(t, o.IsFullyPaid())
	})

	t.Run("partial payments accumulate", func(t *testing.T) {
		o := builder.NewOrderBuilder().Build()

		_, err := o.RecordPayment(builder.D("1000"), now)
		require.NoError(t, err)
		_, err = o.RecordPayment(builder.D("840"), now)
		require.NoError(t, err)

		assert.True(t, builder.D("1840").Equal(o.PaidAmount()))
		assert.True(t, builder.D("2000").Equal(o.AmountDue()))
	})

	t.Run("nothing due", func(t *testing.T) {
		o := builder.NewOrderBuilder().Build()
		_, err := o.RecordPayment(o.TotalAmount(), now)
		require.NoError(t, err)

		_, err = o.RecordPayment(builder.D("1"), now)
		assert.ErrorIs(t, err, order.ErrNothingDue)
	})

	t.Run("cancelled order rejects payments", func(t *testing.T) {
		o := builder.NewOrderBuilder().BuildIn(order.StatusCancelled)

		_, err := o.RecordPayment(builder.D("1"), now)
		assert.ErrorIs(t, err, order.ErrOrderNotPayable)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		o := builder.NewOrderBuilder().Build()

		_, err := o.RecordPayment(decimal.Zero, now)
		assert.True(t, errs.Is(err, errs.ErrValidation))
	})
}
