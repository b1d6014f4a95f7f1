package commands

import (
	"context"
	"time"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/domain/invoice"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/domain/payment"
	"rental-engine/internal/domain/wallet"
	"rental-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// payFromWallet books up to requested against the order and its invoice and
// debits the same amount from the customer's wallet. Nothing is persisted
// except the wallet; the caller saves order, invoice and payment.
func payFromWallet(
	ctx context.Context,
	tx shared.Tx,
	o *order.Order,
	inv *invoice.Invoice,
	requested decimal.Decimal,
	currency string,
	now time.Time,
) (*payment.Payment, error) {
	applied, err := o.RecordPayment(requested, now)
	if err != nil {
		return nil, err
	}

	w, err := tx.Wallets().GetOrCreateForUpdate(ctx, o.CustomerID(), currency)
	if err != nil {
		return nil, err
	}
	invoiceID := inv.ID()
	entry, err := w.Debit(applied, wallet.Reference{
		Type:        wallet.RefInvoicePayment,
		ID:          &invoiceID,
		Description: "Payment for invoice " + inv.Number(),
	}, now)
	if err != nil {
		return nil, err
	}

	if _, err := inv.RecordPayment(applied, now); err != nil {
		return nil, err
	}
	p, err := payment.NewWalletPayment(o.ID(), inv.ID(), o.CustomerID(), requested, applied, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Wallets().Save(ctx, w, entry); err != nil {
		return nil, err
	}
	return p, nil
}

// creditWallet returns money to a user's wallet, opening the wallet if needed.
func creditWallet(
	ctx context.Context,
	tx shared.Tx,
	userID uuid.UUID,
	amount decimal.Decimal,
	ref wallet.Reference,
	currency string,
	now time.Time,
) (*wallet.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil
	}
	w, err := tx.Wallets().GetOrCreateForUpdate(ctx, userID, currency)
	if err != nil {
		return nil, err
	}
	entry, err := w.Credit(amount, ref, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Wallets().Save(ctx, w, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// autoConfirm confirms a pending order once it is fully paid.
func autoConfirm(o *order.Order, enabled bool, now time.Time) (bool, error) {
	if !enabled || o.Status() != order.StatusPending || !o.IsFullyPaid() {
		return false, nil
	}
	if _, err := o.Apply(order.Command{Event: order.EventConfirm, Actor: actor.System()}, now); err != nil {
		return false, err
	}
	return true, nil
}

// invoiceFor returns the order's invoice, issuing one if the order has none yet.
func invoiceFor(ctx context.Context, tx shared.Tx, o *order.Order, dueDays int, now time.Time) (*invoice.Invoice, error) {
	inv, err := tx.Invoices().FindByOrderIDForUpdate(ctx, o.ID())
	if err == nil {
		return inv, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	inv = invoice.NewForOrder(o, now)
	if err := inv.Issue(now, dueDays); err != nil {
		return nil, err
	}
	if err := tx.Invoices().Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}
