package repository

import (
	"context"

	"rental-engine/internal/domain/invoice"
	"rental-engine/internal/infra"
	"rental-engine/internal/infra/db"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type InvoiceRepository struct {
	db db.DBTX
}

func NewInvoiceRepository(db db.DBTX) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	const insertInvoice = `
INSERT INTO invoices (
    id, invoice_number, order_id, customer_id, vendor_id, status, subtotal, tax_rate, tax_amount,
    security_deposit, discount_amount, late_fee, total_amount, paid_amount, issued_at, due_date,
    paid_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := r.db.Exec(ctx, insertInvoice,
		inv.ID(), inv.Number(), inv.OrderID(), inv.CustomerID(), inv.VendorID(), inv.Status().String(),
		pgconv.DecimalToNumeric(inv.Subtotal()), pgconv.DecimalToNumeric(inv.TaxRate()),
		pgconv.DecimalToNumeric(inv.TaxAmount()), pgconv.DecimalToNumeric(inv.SecurityDeposit()),
		pgconv.DecimalToNumeric(inv.DiscountAmount()), pgconv.DecimalToNumeric(inv.LateFee()),
		pgconv.DecimalToNumeric(inv.TotalAmount()), pgconv.DecimalToNumeric(inv.PaidAmount()),
		inv.IssuedAt(), inv.DueDate(), inv.PaidAt(), inv.CreatedAt(), inv.UpdatedAt(),
	)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr("invoice already exists for order", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create invoice", err)
	}

	const insertLine = `
INSERT INTO invoice_lines (id, invoice_id, position, order_line_id, description, quantity, unit_price, total_price)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for i, l := range inv.Lines() {
		_, err := r.db.Exec(ctx, insertLine,
			l.ID, inv.ID(), i, l.OrderLineID, l.Description, l.Quantity,
			pgconv.DecimalToNumeric(l.UnitPrice), pgconv.DecimalToNumeric(l.TotalPrice),
		)
		if err != nil {
			return infra.WrapRepoErr("failed to create invoice line", err)
		}
	}
	return nil
}

func (r *InvoiceRepository) FindByOrderIDForUpdate(ctx context.Context, orderID uuid.UUID) (*invoice.Invoice, error) {
	const query = `
SELECT id, invoice_number, order_id, customer_id, vendor_id, status, subtotal, tax_rate, tax_amount,
       security_deposit, discount_amount, late_fee, total_amount, paid_amount, issued_at, due_date,
       paid_at, created_at, updated_at
FROM invoices
WHERE order_id = $1
FOR UPDATE`

	var (
		p      invoice.ReconstructParams
		status string
	)
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&p.ID, &p.Number, &p.OrderID, &p.CustomerID, &p.VendorID, &status,
		pgconv.DecimalDest(&p.Subtotal), pgconv.DecimalDest(&p.TaxRate), pgconv.DecimalDest(&p.TaxAmount),
		pgconv.DecimalDest(&p.SecurityDeposit), pgconv.DecimalDest(&p.DiscountAmount), pgconv.DecimalDest(&p.LateFee),
		pgconv.DecimalDest(&p.TotalAmount), pgconv.DecimalDest(&p.PaidAmount),
		&p.IssuedAt, &p.DueDate, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Wrapf(invoice.ErrInvoiceNotFound, "invoice for order %s", orderID)
		}
		return nil, infra.WrapRepoErr("failed to lock invoice", err)
	}
	p.Status = invoice.Status(status)

	lines, err := r.findLines(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Lines = lines

	return invoice.Reconstruct(p), nil
}

func (r *InvoiceRepository) findLines(ctx context.Context, invoiceID uuid.UUID) ([]invoice.Line, error) {
	const query = `
SELECT id, order_line_id, description, quantity, unit_price, total_price
FROM invoice_lines
WHERE invoice_id = $1
ORDER BY position`

	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load invoice lines", err)
	}
	defer rows.Close()

	var lines []invoice.Line
	for rows.Next() {
		var l invoice.Line
		if err := rows.Scan(
			&l.ID, &l.OrderLineID, &l.Description, &l.Quantity,
			pgconv.DecimalDest(&l.UnitPrice), pgconv.DecimalDest(&l.TotalPrice),
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan invoice line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate invoice lines", err)
	}
	return lines, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	const stmt = `
UPDATE invoices SET
    status = $2, late_fee = $3, total_amount = $4, paid_amount = $5, issued_at = $6,
    due_date = $7, paid_at = $8, updated_at = $9
WHERE id = $1`

	tag, err := r.db.Exec(ctx, stmt,
		inv.ID(), inv.Status().String(), pgconv.DecimalToNumeric(inv.LateFee()),
		pgconv.DecimalToNumeric(inv.TotalAmount()), pgconv.DecimalToNumeric(inv.PaidAmount()),
		inv.IssuedAt(), inv.DueDate(), inv.PaidAt(), inv.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Wrapf(invoice.ErrInvoiceNotFound, "invoice %s", inv.ID())
	}
	return nil
}
