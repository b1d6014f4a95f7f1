package repository

import (
	"context"

	"rental-engine/internal/domain/order"
	"rental-engine/internal/domain/payment"
	"rental-engine/internal/domain/pricing"
	"rental-engine/internal/infra"
	"rental-engine/internal/infra/db"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(db db.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	const insertOrder = `
INSERT INTO orders (
    id, order_number, customer_id, vendor_id, status, delivery_address, payment_method, coupon_code,
    subtotal, tax_rate, tax_amount, security_deposit, discount_amount, late_fee, total_amount,
    paid_amount, refunded_amount, deposit_settled, pickup_date, return_date, cancelled_at,
    created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`

	_, err := r.db.Exec(ctx, insertOrder,
		o.ID(), o.Number(), o.CustomerID(), o.VendorID(), o.Status().String(), o.DeliveryAddress(),
		o.PaymentMethod().String(), o.CouponCode(),
		pgconv.DecimalToNumeric(o.Subtotal()), pgconv.DecimalToNumeric(o.TaxRate()),
		pgconv.DecimalToNumeric(o.TaxAmount()), pgconv.DecimalToNumeric(o.SecurityDeposit()),
		pgconv.DecimalToNumeric(o.DiscountAmount()), pgconv.DecimalPtrToNumeric(o.LateFee()),
		pgconv.DecimalToNumeric(o.TotalAmount()), pgconv.DecimalToNumeric(o.PaidAmount()),
		pgconv.DecimalToNumeric(o.RefundedAmount()), o.DepositSettled(),
		o.PickupDate(), o.ReturnDate(), o.CancelledAt(), o.CreatedAt(), o.UpdatedAt(),
	)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr("order number already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create order", err)
	}

	const insertLine = `
INSERT INTO order_lines (
    id, order_id, position, product_id, variant_id, product_name, variant_name, period_type,
    start_date, end_date, quantity, billing_units, unit_price, total_price
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	for i, l := range o.Lines() {
		_, err := r.db.Exec(ctx, insertLine,
			l.ID, o.ID(), i, l.ProductID, l.VariantID, l.ProductName, l.VariantName, l.PeriodType.String(),
			l.Start, l.End, l.Quantity, l.BillingUnits,
			pgconv.DecimalToNumeric(l.UnitPrice), pgconv.DecimalToNumeric(l.TotalPrice),
		)
		if err != nil {
			if pgconv.IsForeignKeyViolation(err) {
				return infra.WrapRepoErr("order line references an unknown product", err, infra.KindForeignKeyViolated)
			}
			return infra.WrapRepoErr("failed to create order line", err)
		}
	}
	return nil
}

func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	const query = `
SELECT id, order_number, customer_id, vendor_id, status, delivery_address, payment_method, coupon_code,
       subtotal, tax_rate, tax_amount, security_deposit, discount_amount, late_fee, total_amount,
       paid_amount, refunded_amount, deposit_settled, pickup_date, return_date, cancelled_at,
       created_at, updated_at
FROM orders
WHERE id = $1
FOR UPDATE`

	var (
		p             order.ReconstructParams
		status        string
		paymentMethod string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Number, &p.CustomerID, &p.VendorID, &status, &p.DeliveryAddress, &paymentMethod, &p.CouponCode,
		pgconv.DecimalDest(&p.Subtotal), pgconv.DecimalDest(&p.TaxRate), pgconv.DecimalDest(&p.TaxAmount),
		pgconv.DecimalDest(&p.SecurityDeposit), pgconv.DecimalDest(&p.DiscountAmount), pgconv.DecimalPtrDest(&p.LateFee),
		pgconv.DecimalDest(&p.TotalAmount), pgconv.DecimalDest(&p.PaidAmount), pgconv.DecimalDest(&p.RefundedAmount),
		&p.DepositSettled, &p.PickupDate, &p.ReturnDate, &p.CancelledAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Wrapf(order.ErrOrderNotFound, "order %s", id)
		}
		return nil, infra.WrapRepoErr("failed to lock order", err)
	}
	p.Status = order.Status(status)
	p.PaymentMethod = payment.Method(paymentMethod)

	lines, err := r.findLines(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Lines = lines

	return order.ReconstructOrder(p), nil
}

func (r *OrderRepository) findLines(ctx context.Context, orderID uuid.UUID) ([]order.Line, error) {
	const query = `
SELECT id, product_id, variant_id, product_name, variant_name, period_type,
       start_date, end_date, quantity, billing_units, unit_price, total_price
FROM order_lines
WHERE order_id = $1
ORDER BY position`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order lines", err)
	}
	defer rows.Close()

	var lines []order.Line
	for rows.Next() {
		var (
			l          order.Line
			periodType string
		)
		if err := rows.Scan(
			&l.ID, &l.ProductID, &l.VariantID, &l.ProductName, &l.VariantName, &periodType,
			&l.Start, &l.End, &l.Quantity, &l.BillingUnits,
			pgconv.DecimalDest(&l.UnitPrice), pgconv.DecimalDest(&l.TotalPrice),
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order line", err)
		}
		l.PeriodType = pricing.PeriodType(periodType)
		l.Start = l.Start.UTC()
		l.End = l.End.UTC()
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order lines", err)
	}
	return lines, nil
}

// Update writes back the fields that change over the order lifecycle.
// Lines are immutable once the order exists.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	const stmt = `
UPDATE orders SET
    status = $2, discount_amount = $3, late_fee = $4, total_amount = $5, paid_amount = $6,
    refunded_amount = $7, deposit_settled = $8, pickup_date = $9, return_date = $10,
    cancelled_at = $11, updated_at = $12
WHERE id = $1`

	tag, err := r.db.Exec(ctx, stmt,
		o.ID(), o.Status().String(), pgconv.DecimalToNumeric(o.DiscountAmount()),
		pgconv.DecimalPtrToNumeric(o.LateFee()), pgconv.DecimalToNumeric(o.TotalAmount()),
		pgconv.DecimalToNumeric(o.PaidAmount()), pgconv.DecimalToNumeric(o.RefundedAmount()),
		o.DepositSettled(), o.PickupDate(), o.ReturnDate(), o.CancelledAt(), o.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update order", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Wrapf(order.ErrOrderNotFound, "order %s", o.ID())
	}
	return nil
}
