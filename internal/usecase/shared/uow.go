package shared

//go:generate mockgen -source=uow.go -destination=../../testutil/mock/shared/uow.go -package=sharedmock

import (
	"context"

	"rental-engine/internal/domain/invoice"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/domain/payment"
	"rental-engine/internal/domain/wallet"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic.
	// fn may run more than once; it must not call external services.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx hands out repositories bound to one transaction.
// The *ForUpdate finders take a row lock held until the transaction ends.
type Tx interface {
	Orders() OrderRepository
	Inventory() InventoryRepository
	Invoices() InvoiceRepository
	Payments() PaymentRepository
	Wallets() WalletRepository
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Update(ctx context.Context, o *order.Order) error
}

// InventoryRepository adjusts the live available quantity of a product.
type InventoryRepository interface {
	// Reserve fails with errs.ErrInsufficientAvailability when fewer than qty units are left.
	Reserve(ctx context.Context, productID uuid.UUID, qty int) error
	Release(ctx context.Context, productID uuid.UUID, qty int) error
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *invoice.Invoice) error
	FindByOrderIDForUpdate(ctx context.Context, orderID uuid.UUID) (*invoice.Invoice, error)
	Update(ctx context.Context, inv *invoice.Invoice) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) error
	FindByReferenceForUpdate(ctx context.Context, reference string) (*payment.Payment, error)
	Update(ctx context.Context, p *payment.Payment) error
}

type WalletRepository interface {
	// GetOrCreateForUpdate opens an empty wallet the first time a user is seen.
	GetOrCreateForUpdate(ctx context.Context, userID uuid.UUID, currency string) (*wallet.Wallet, error)
	// Save persists the balance together with the ledger entry that moved it.
	Save(ctx context.Context, w *wallet.Wallet, entry *wallet.Transaction) error
}
