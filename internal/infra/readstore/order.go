package readstore

import (
	"context"
	"time"

	"rental-engine/internal/infra"
	"rental-engine/internal/infra/db"
	"rental-engine/internal/pkg/pgconv"
	"rental-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(db db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: db}
}

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	const query = `
SELECT id, order_number, customer_id, vendor_id, status, delivery_address, payment_method, coupon_code,
       subtotal, tax_rate, tax_amount, security_deposit, discount_amount, late_fee, total_amount,
       paid_amount, refunded_amount, deposit_settled, pickup_date, return_date, cancelled_at,
       created_at, updated_at
FROM orders
WHERE id = $1`

	var v queries.OrderView
	err := r.db.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.Number, &v.CustomerID, &v.VendorID, &v.Status, &v.DeliveryAddress, &v.PaymentMethod, &v.CouponCode,
		pgconv.DecimalDest(&v.Subtotal), pgconv.DecimalDest(&v.TaxRate), pgconv.DecimalDest(&v.TaxAmount),
		pgconv.DecimalDest(&v.SecurityDeposit), pgconv.DecimalDest(&v.DiscountAmount), pgconv.DecimalPtrDest(&v.LateFee),
		pgconv.DecimalDest(&v.TotalAmount), pgconv.DecimalDest(&v.PaidAmount), pgconv.DecimalDest(&v.RefundedAmount),
		&v.DepositSettled, &v.PickupDate, &v.ReturnDate, &v.CancelledAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order by ID", err)
	}

	lines, err := r.findLines(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Lines = lines
	return &v, nil
}

func (r *OrderReadStore) findLines(ctx context.Context, orderID uuid.UUID) ([]queries.OrderLineView, error) {
	const query = `
SELECT id, product_id, product_name, variant_id, variant_name, period_type,
       start_date, end_date, quantity, billing_units, unit_price, total_price
FROM order_lines
WHERE order_id = $1
ORDER BY position`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find order lines", err)
	}
	defer rows.Close()

	lines := []queries.OrderLineView{}
	for rows.Next() {
		var l queries.OrderLineView
		if err := rows.Scan(
			&l.ID, &l.ProductID, &l.ProductName, &l.VariantID, &l.VariantName, &l.PeriodType,
			&l.StartDate, &l.EndDate, &l.Quantity, &l.BillingUnits,
			pgconv.DecimalDest(&l.UnitPrice), pgconv.DecimalDest(&l.TotalPrice),
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order lines", err)
	}
	return lines, nil
}

// A nil filter field matches every row.
const listOrdersSelect = `
SELECT o.id, o.order_number, o.customer_id, o.vendor_id, o.status, o.total_amount, o.paid_amount,
       (SELECT count(*) FROM order_lines l WHERE l.order_id = o.id) AS line_count,
       o.created_at
FROM orders o
WHERE ($1::uuid IS NULL OR o.customer_id = $1)
  AND ($2::uuid IS NULL OR o.vendor_id = $2)
  AND ($3::text IS NULL OR o.status = $3)
  AND ($4::boolean IS NULL OR (o.paid_amount >= o.total_amount) = $4)
  AND ($5::timestamptz IS NULL OR (
        o.return_date IS NOT NULL
    AND o.return_date <= $5
    AND o.status NOT IN ('returned', 'completed', 'cancelled')))`

func (r *OrderReadStore) ListFirstPage(ctx context.Context, filter queries.OrderFilter, limit int32) ([]*queries.OrderListItem, error) {
	const query = listOrdersSelect + `
ORDER BY o.created_at DESC, o.id DESC
LIMIT $6`

	rows, err := r.db.Query(ctx, query, filterArgs(filter, limit)...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders first page", err)
	}
	return collectOrderList(rows)
}

func (r *OrderReadStore) ListKeyset(ctx context.Context, filter queries.OrderFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	const query = listOrdersSelect + `
  AND (o.created_at, o.id) < ($6, $7)
ORDER BY o.created_at DESC, o.id DESC
LIMIT $8`

	rows, err := r.db.Query(ctx, query, filterArgs(filter, lastCreatedAt, lastID, limit)...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders by keyset", err)
	}
	return collectOrderList(rows)
}

// filterArgs binds $1..$5 of listOrdersSelect followed by extra.
func filterArgs(filter queries.OrderFilter, extra ...any) []any {
	args := []any{filter.CustomerID, filter.VendorID, filter.Status, filter.Paid, filter.ReturnDueBy}
	return append(args, extra...)
}

func collectOrderList(rows pgx.Rows) ([]*queries.OrderListItem, error) {
	defer rows.Close()

	result := []*queries.OrderListItem{}
	for rows.Next() {
		var item queries.OrderListItem
		if err := rows.Scan(
			&item.ID, &item.Number, &item.CustomerID, &item.VendorID, &item.Status,
			pgconv.DecimalDest(&item.TotalAmount), pgconv.DecimalDest(&item.PaidAmount),
			&item.LineCount, &item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order list item", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate orders", err)
	}
	return result, nil
}
