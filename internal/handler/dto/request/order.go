package request

import (
	"time"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/pkg/money"
	"rental-engine/internal/usecase/commands"
	"rental-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	DeliveryAddress string `json:"delivery_address" binding:"required,max=500"`
	PaymentMethod   string `json:"payment_method" binding:"required"`
}

func (r *PlaceOrderRequest) ToInput(customerID uuid.UUID) commands.PlaceOrderInput {
	return commands.PlaceOrderInput{
		CustomerID:      customerID,
		DeliveryAddress: r.DeliveryAddress,
		PaymentMethod:   r.PaymentMethod,
	}
}

type TransitionRequest struct {
	Event      string           `json:"event" binding:"required"`
	PickupDate *time.Time       `json:"pickup_date"`
	ReturnDate *time.Time       `json:"return_date"`
	LateFee    *decimal.Decimal `json:"late_fee"`
}

func (r *TransitionRequest) Validate() error {
	if r.LateFee == nil {
		return nil
	}
	return money.CheckCents(*r.LateFee)
}

func (r *TransitionRequest) ToInput(orderID uuid.UUID, a actor.Actor) commands.TransitionInput {
	return commands.TransitionInput{
		OrderID:    orderID,
		Event:      order.Event(r.Event),
		Actor:      a,
		PickupDate: r.PickupDate,
		ReturnDate: r.ReturnDate,
		LateFee:    r.LateFee,
	}
}

type ListOrdersRequest struct {
	Status        string `form:"status" binding:"omitempty,oneof=pending confirmed picked_up returned completed cancelled"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=paid unpaid"`
	ReturnStatus  string `form:"return_status" binding:"omitempty,oneof=approaching"`
	Limit         int    `form:"limit" binding:"omitempty,min=1"`
	After         string `form:"after"`
}

func (r *ListOrdersRequest) ToParams() queries.OrderListParams {
	return queries.OrderListParams{
		Status:        r.Status,
		PaymentStatus: r.PaymentStatus,
		ReturnStatus:  r.ReturnStatus,
	}
}
