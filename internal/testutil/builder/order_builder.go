//go:build unit || integration

package builder

import (
	"time"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/domain/payment"
	"rental-engine/internal/domain/pricing"

	"github.com/google/uuid"
)

type OrderBuilder struct {
	CustomerID      uuid.UUID
	VendorID        uuid.UUID
	Lines           []order.Line
	DeliveryAddress string
	PaymentMethod   payment.Method
	Coupon          *coupon.Result
	Policy          order.Policy
	Now             time.Time
}

// NewOrderBuilder defaults to one line of 2 units at 500/day for 3 days:
// subtotal 3000, tax 540, deposit 300, total 3840.
func NewOrderBuilder() *OrderBuilder {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &OrderBuilder{
		CustomerID: uuid.New(),
		VendorID:   uuid.New(),
		Lines: []order.Line{{
			ProductID:    uuid.New(),
			ProductName:  "DSLR Camera",
			PeriodType:   pricing.PeriodDay,
			Start:        start,
			End:          start.Add(72 * time.Hour),
			Quantity:     2,
			BillingUnits: 3,
			UnitPrice:    D("1500"),
			TotalPrice:   D("3000"),
		}},
		DeliveryAddress: "12 MG Road, Bengaluru",
		PaymentMethod:   payment.MethodWallet,
		Policy:          order.Policy{TaxRate: D("0.18"), DepositRate: D("0.10")},
		Now:             start.Add(-48 * time.Hour),
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) Build() *order.Order {
	o, err := order.NewOrder(order.NewOrderParams{
		CustomerID:      b.CustomerID,
		VendorID:        b.VendorID,
		Lines:           b.Lines,
		DeliveryAddress: b.DeliveryAddress,
		PaymentMethod:   b.PaymentMethod,
		Coupon:          b.Coupon,
	}, b.Policy, b.Now)
	if err != nil {
		panic(err)
	}
	return o
}

// BuildIn drives a fresh order to status through the regular events.
func (b *OrderBuilder) BuildIn(status order.Status) *order.Order {
	o := b.Build()
	vendor := actor.Actor{ID: b.VendorID, Role: actor.RoleVendor}
	path := map[order.Status][]order.Event{
		order.StatusPending:   nil,
		order.StatusConfirmed: {order.EventConfirm},
		order.StatusPickedUp:  {order.EventConfirm, order.EventMarkPickedUp},
		order.StatusCompleted: {order.EventConfirm, order.EventMarkPickedUp, order.EventMarkReturned},
		order.StatusCancelled: {order.EventCancel},
	}
	for _, e := range path[status] {
		if _, err := o.Apply(order.Command{Event: e, Actor: vendor}, b.Now); err != nil {
			panic(err)
		}
	}
	return o
}
