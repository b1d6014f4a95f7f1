package queries

//go:generate mockgen -source=invoice.go -destination=../../testutil/mock/queries/invoice.go -package=queriesmock

import (
	"context"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/infra"
	"rental-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrInvoiceNotFound = errs.Mark(errs.New("invoice not found"), errs.ErrNotFound)

type InvoiceReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InvoiceView, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*InvoiceView, error)
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]PaymentView, error)
}

type InvoiceQueries interface {
	GetByOrderID(ctx context.Context, a actor.Actor, orderID uuid.UUID) (*InvoiceView, error)
	// ListPayments returns every payment attempt booked against the invoice,
	// oldest first, failed and pending ones included.
	ListPayments(ctx context.Context, a actor.Actor, invoiceID uuid.UUID) ([]PaymentView, error)
}

type invoiceQueriesImpl struct {
	store InvoiceReadStore
}

func NewInvoiceQueries(store InvoiceReadStore) InvoiceQueries {
	return &invoiceQueriesImpl{store: store}
}

func (q *invoiceQueriesImpl) GetByOrderID(ctx context.Context, a actor.Actor, orderID uuid.UUID) (*InvoiceView, error) {
	return q.visible(a)(q.store.FindByOrderID(ctx, orderID))
}

func (q *invoiceQueriesImpl) ListPayments(ctx context.Context, a actor.Actor, invoiceID uuid.UUID) ([]PaymentView, error) {
	if _, err := q.visible(a)(q.store.FindByID(ctx, invoiceID)); err != nil {
		return nil, err
	}
	return q.store.ListPayments(ctx, invoiceID)
}

// visible maps a store lookup to ErrInvoiceNotFound or ErrOrderAccess.
func (q *invoiceQueriesImpl) visible(a actor.Actor) func(*InvoiceView, error) (*InvoiceView, error) {
	return func(iv *InvoiceView, err error) (*InvoiceView, error) {
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, ErrInvoiceNotFound
			}
			return nil, err
		}
		if !canSee(a, iv.CustomerID, iv.VendorID) {
			return nil, ErrOrderAccess
		}
		return iv, nil
	}
}
