package repository

import (
	"context"
	"time"

	"rental-engine/internal/domain/payment"
	"rental-engine/internal/infra"
	"rental-engine/internal/infra/db"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentRepository struct {
	db db.DBTX
}

func NewPaymentRepository(db db.DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	const stmt = `
INSERT INTO payments (
    id, order_id, invoice_id, customer_id, method, requested_amount, amount, status,
    external_reference, redirect_url, failure_reason, created_at, completed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, stmt,
		p.ID(), p.OrderID(), p.InvoiceID(), p.CustomerID(), p.Method().String(),
		pgconv.DecimalToNumeric(p.RequestedAmount()), pgconv.DecimalToNumeric(p.Amount()), p.Status().String(),
		p.ExternalReference(), p.RedirectURL(), p.FailureReason(), p.CreatedAt(), p.CompletedAt(),
	)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr("payment reference already used", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create payment", err)
	}
	return nil
}

func (r *PaymentRepository) FindByReferenceForUpdate(ctx context.Context, reference string) (*payment.Payment, error) {
	const query = `
SELECT id, order_id, invoice_id, customer_id, method, requested_amount, amount, status,
       external_reference, redirect_url, failure_reason, created_at, completed_at
FROM payments
WHERE external_reference = $1
FOR UPDATE`

	var (
		id, orderID, invoiceID, customerID uuid.UUID
		method, status                     string
		requested, amount                  decimal.Decimal
		externalRef, redirectURL, reason   *string
		createdAt                          time.Time
		completedAt                        *time.Time
	)
	err := r.db.QueryRow(ctx, query, reference).Scan(
		&id, &orderID, &invoiceID, &customerID, &method,
		pgconv.DecimalDest(&requested), pgconv.DecimalDest(&amount), &status,
		&externalRef, &redirectURL, &reason, &createdAt, &completedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Wrapf(payment.ErrPaymentNotFound, "reference %q", reference)
		}
		return nil, infra.WrapRepoErr("failed to lock payment", err)
	}

	return payment.ReconstructPayment(
		id, orderID, invoiceID, customerID,
		payment.Method(method), requested, amount, payment.Status(status),
		externalRef, redirectURL, reason, createdAt, completedAt,
	), nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	const stmt = `
UPDATE payments SET
    amount = $2, status = $3, redirect_url = $4, failure_reason = $5, completed_at = $6
WHERE id = $1`

	tag, err := r.db.Exec(ctx, stmt,
		p.ID(), pgconv.DecimalToNumeric(p.Amount()), p.Status().String(),
		p.RedirectURL(), p.FailureReason(), p.CompletedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Wrapf(payment.ErrPaymentNotFound, "payment %s", p.ID())
	}
	return nil
}
