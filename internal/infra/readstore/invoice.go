package readstore

import (
	"context"

	"rental-engine/internal/infra"
	"rental-engine/internal/infra/db"
	"rental-engine/internal/pkg/pgconv"
	"rental-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

type InvoiceReadStore struct {
	db db.DBTX
}

func NewInvoiceReadStore(db db.DBTX) *InvoiceReadStore {
	return &InvoiceReadStore{db: db}
}

const invoiceSelect = `
SELECT id, invoice_number, order_id, customer_id, vendor_id, status, subtotal, tax_rate, tax_amount,
       security_deposit, discount_amount, late_fee, total_amount, paid_amount, issued_at, due_date,
       paid_at, created_at, updated_at
FROM invoices`

func (r *InvoiceReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.InvoiceView, error) {
	return r.find(ctx, invoiceSelect+`
WHERE id = $1`, id, "failed to find invoice by ID")
}

func (r *InvoiceReadStore) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*queries.InvoiceView, error) {
	return r.find(ctx, invoiceSelect+`
WHERE order_id = $1`, orderID, "failed to find invoice by order ID")
}

func (r *InvoiceReadStore) find(ctx context.Context, query string, arg uuid.UUID, failMsg string) (*queries.InvoiceView, error) {
	var v queries.InvoiceView
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&v.ID, &v.Number, &v.OrderID, &v.CustomerID, &v.VendorID, &v.Status,
		pgconv.DecimalDest(&v.Subtotal), pgconv.DecimalDest(&v.TaxRate), pgconv.DecimalDest(&v.TaxAmount),
		pgconv.DecimalDest(&v.SecurityDeposit), pgconv.DecimalDest(&v.DiscountAmount), pgconv.DecimalDest(&v.LateFee),
		pgconv.DecimalDest(&v.TotalAmount), pgconv.DecimalDest(&v.PaidAmount),
		&v.IssuedAt, &v.DueDate, &v.PaidAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("invoice not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr(failMsg, err)
	}

	const linesQuery = `
SELECT id, order_line_id, description, quantity, unit_price, total_price
FROM invoice_lines
WHERE invoice_id = $1
ORDER BY position`

	rows, err := r.db.Query(ctx, linesQuery, v.ID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find invoice lines", err)
	}
	defer rows.Close()

	v.Lines = []queries.InvoiceLineView{}
	for rows.Next() {
		var l queries.InvoiceLineView
		if err := rows.Scan(
			&l.ID, &l.OrderLineID, &l.Description, &l.Quantity,
			pgconv.DecimalDest(&l.UnitPrice), pgconv.DecimalDest(&l.TotalPrice),
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan invoice line", err)
		}
		v.Lines = append(v.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate invoice lines", err)
	}
	return &v, nil
}

func (r *InvoiceReadStore) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]queries.PaymentView, error) {
	const query = `
SELECT id, order_id, invoice_id, method, requested_amount, amount, status,
       external_reference, failure_reason, created_at, completed_at
FROM payments
WHERE invoice_id = $1
ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list invoice payments", err)
	}
	defer rows.Close()

	result := []queries.PaymentView{}
	for rows.Next() {
		var p queries.PaymentView
		if err := rows.Scan(
			&p.ID, &p.OrderID, &p.InvoiceID, &p.Method,
			pgconv.DecimalDest(&p.RequestedAmount), pgconv.DecimalDest(&p.Amount), &p.Status,
			&p.ExternalReference, &p.FailureReason, &p.CreatedAt, &p.CompletedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan invoice payment", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate invoice payments", err)
	}
	return result, nil
}
