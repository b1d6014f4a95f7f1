package queries

//go:generate mockgen -source=order.go -destination=../../testutil/mock/queries/order.go -package=queriesmock

import (
	"context"
	"time"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/infra"
	"rental-engine/internal/pkg/clock"
	"rental-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errs.Mark(errs.New("order not found"), errs.ErrNotFound)
	ErrOrderAccess   = errs.Mark(errs.New("order belongs to another customer or vendor"), errs.ErrForbidden)
)

// ReturnWindow is how far ahead a return date counts as approaching.
const ReturnWindow = 24 * time.Hour

const (
	PaymentStatusPaid       = "paid"
	PaymentStatusUnpaid     = "unpaid"
	ReturnStatusApproaching = "approaching"
)

// OrderFilter narrows a listing; nil fields do not filter.
type OrderFilter struct {
	CustomerID *uuid.UUID
	VendorID   *uuid.UUID
	Status     *string
	// Paid matches orders whose paid amount covers the total (true) or not (false).
	Paid *bool
	// ReturnDueBy matches open rentals whose return date is at or before it,
	// overdue ones included.
	ReturnDueBy *time.Time
}

// OrderListParams are the filters a caller can ask for; empty fields do not filter.
type OrderListParams struct {
	Status        string
	PaymentStatus string
	ReturnStatus  string
}

type OrderReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListFirstPage(ctx context.Context, filter OrderFilter, limit int32) ([]*OrderListItem, error)
	ListKeyset(ctx context.Context, filter OrderFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*OrderListItem, error)
}

type OrderQueries interface {
	GetByID(ctx context.Context, a actor.Actor, id uuid.UUID) (*OrderView, error)
	// List returns the caller's orders: placed ones for a customer, received
	// ones for a vendor, all of them for an admin. Newest first.
	List(ctx context.Context, a actor.Actor, params OrderListParams, cursor *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
}

type orderQueriesImpl struct {
	store OrderReadStore
	clock clock.Clock
}

func NewOrderQueries(store OrderReadStore, clk clock.Clock) OrderQueries {
	return &orderQueriesImpl{store: store, clock: clk}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, a actor.Actor, id uuid.UUID) (*OrderView, error) {
	ov, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !canSee(a, ov.CustomerID, ov.VendorID) {
		return nil, ErrOrderAccess
	}
	return ov, nil
}

func (q *orderQueriesImpl) List(ctx context.Context, a actor.Actor, params OrderListParams, cursor *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	var filter OrderFilter
	switch a.Role {
	case actor.RoleAdmin:
	case actor.RoleVendor:
		filter.VendorID = &a.ID
	case actor.RoleCustomer:
		filter.CustomerID = &a.ID
	default:
		return nil, nil, ErrOrderAccess
	}
	if err := q.applyParams(&filter, params); err != nil {
		return nil, nil, err
	}

	limit = ValidateLimit(limit)
	var rows []*OrderListItem
	var err error
	if cursor == nil || cursor.After == "" {
		rows, err = q.store.ListFirstPage(ctx, filter, int32(limit+1))
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, derr
		}
		rows, err = q.store.ListKeyset(ctx, filter, lastCreatedAt, lastID, int32(limit+1))
	}
	if err != nil {
		return nil, nil, err
	}

	rows, next := page(rows, limit, func(o *OrderListItem) (time.Time, uuid.UUID) { return o.CreatedAt, o.ID })
	return rows, next, nil
}

func (q *orderQueriesImpl) applyParams(filter *OrderFilter, params OrderListParams) error {
	if status := params.Status; status != "" {
		if !order.Status(status).IsValid() {
			return errs.Mark(errs.Newf("unknown order status %q", status), errs.ErrValidation)
		}
		filter.Status = &status
	}

	switch params.PaymentStatus {
	case "":
	case PaymentStatusPaid, PaymentStatusUnpaid:
		paid := params.PaymentStatus == PaymentStatusPaid
		filter.Paid = &paid
	default:
		return errs.Mark(errs.Newf("unknown payment status %q", params.PaymentStatus), errs.ErrValidation)
	}

	switch params.ReturnStatus {
	case "":
	case ReturnStatusApproaching:
		dueBy := q.clock.Now().Add(ReturnWindow)
		filter.ReturnDueBy = &dueBy
	default:
		return errs.Mark(errs.Newf("unknown return status %q", params.ReturnStatus), errs.ErrValidation)
	}
	return nil
}

// canSee allows the order's own customer and vendor; admins see everything.
func canSee(a actor.Actor, customerID, vendorID uuid.UUID) bool {
	if a.IsAdmin() {
		return true
	}
	return a.ID == customerID || a.ID == vendorID
}
