package commands

//go:generate mockgen -source=order_lifecycle.go -destination=../../testutil/mock/commands/order_lifecycle.go -package=commandsmock

import (
	"context"
	"log/slog"
	"time"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/domain/invoice"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/domain/wallet"
	"rental-engine/internal/pkg/clock"
	"rental-engine/internal/pkg/money"
	"rental-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransitionInput struct {
	OrderID    uuid.UUID
	Event      order.Event
	Actor      actor.Actor
	PickupDate *time.Time
	ReturnDate *time.Time
	LateFee    *decimal.Decimal
}

type TransitionResult struct {
	Order   *order.Order
	Invoice *invoice.Invoice
	Outcome order.Outcome
	// Refund is the wallet credit made for the customer, if any.
	Refund *wallet.Transaction
}

type OrderLifecycle interface {
	TransitionOrder(ctx context.Context, in TransitionInput) (*TransitionResult, error)
}

type orderLifecycleImpl struct {
	uow      shared.UnitOfWork
	settings Settings
	clock    clock.Clock
}

func NewOrderLifecycle(uow shared.UnitOfWork, settings Settings, clk clock.Clock) OrderLifecycle {
	return &orderLifecycleImpl{
		uow:      uow,
		settings: settings,
		clock:    clk,
	}
}

// TransitionOrder applies one event under the order's row lock. Inventory,
// invoice and wallet effects commit together with the status change.
func (uc *orderLifecycleImpl) TransitionOrder(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	if in.LateFee != nil {
		if err := money.CheckCents(*in.LateFee); err != nil {
			return nil, err
		}
	}

	var result *TransitionResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		o, derr := tx.Orders().FindByIDForUpdate(ctx, in.OrderID)
		if derr != nil {
			return derr
		}

		out, derr := o.Apply(order.Command{
			Event:      in.Event,
			Actor:      in.Actor,
			PickupDate: in.PickupDate,
			ReturnDate: in.ReturnDate,
			LateFee:    in.LateFee,
		}, now)
		if derr != nil {
			return derr
		}

		if out.ReleaseInventory {
			for _, l := range o.Lines() {
				if derr = tx.Inventory().Release(ctx, l.ProductID, l.Quantity); derr != nil {
					return derr
				}
			}
		}

		inv, derr := uc.settleInvoice(ctx, tx, o, out, now)
		if derr != nil {
			return derr
		}

		refund, derr := creditWallet(ctx, tx, o.CustomerID(), out.Refund, refundReference(o, in.Event), uc.settings.Currency, now)
		if derr != nil {
			return derr
		}

		if derr = tx.Orders().Update(ctx, o); derr != nil {
			return derr
		}
		result = &TransitionResult{Order: o, Invoice: inv, Outcome: out, Refund: refund}
		return nil
	})
	if err != nil {
		return nil, err
	}

	args := []any{
		"order_id", in.OrderID,
		"event", in.Event.String(),
		"from", result.Outcome.From.String(),
		"to", result.Outcome.To.String(),
		"actor_id", in.Actor.ID,
	}
	if s := result.Outcome.Settlement; s != nil {
		args = append(args, "late_fee", s.LateFee.String(), "refund", s.Refund.String(), "additional_due", s.AdditionalDue.String())
	}
	slog.InfoContext(ctx, "order transitioned", args...)
	return result, nil
}

// settleInvoice mirrors cancellation and return settlement onto the invoice.
// Orders that never got an invoice have nothing to mirror.
func (uc *orderLifecycleImpl) settleInvoice(ctx context.Context, tx shared.Tx, o *order.Order, out order.Outcome, now time.Time) (*invoice.Invoice, error) {
	if out.To != order.StatusCancelled && out.Settlement == nil {
		return nil, nil
	}
	inv, err := tx.Invoices().FindByOrderIDForUpdate(ctx, o.ID())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if out.To == order.StatusCancelled {
		if err := inv.Refund(money.Min(out.Refund, inv.PaidAmount()), now); err != nil {
			return nil, err
		}
		inv.Cancel(now)
	} else if err := inv.Rebase(o, out.Refund, now); err != nil {
		return nil, err
	}

	if err := tx.Invoices().Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func refundReference(o *order.Order, e order.Event) wallet.Reference {
	id := o.ID()
	if e == order.EventCancel {
		return wallet.Reference{
			Type:        wallet.RefOrderCancellationRefund,
			ID:          &id,
			Description: "Refund for cancelled order " + o.Number(),
		}
	}
	return wallet.Reference{
		Type:        wallet.RefDepositRefund,
		ID:          &id,
		Description: "Security deposit refund for order " + o.Number(),
	}
}
