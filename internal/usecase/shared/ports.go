package shared

//go:generate mockgen -source=ports.go -destination=../../testutil/mock/shared/ports.go -package=sharedmock

import (
	"context"

	"rental-engine/internal/domain/cart"
	"rental-engine/internal/domain/catalog"
	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogReader reads products with their pricing tiers and live stock.
type CatalogReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// CartStore keeps one cart snapshot per customer.
type CartStore interface {
	// Load returns nil and no error when the customer has no saved cart.
	Load(ctx context.Context, customerID uuid.UUID) (*cart.Snapshot, error)
	Save(ctx context.Context, snap cart.Snapshot) error
	Delete(ctx context.Context, customerID uuid.UUID) error
}

// CouponOracle asks the policy service whether a code applies to an amount.
type CouponOracle interface {
	Validate(ctx context.Context, code coupon.Code, orderAmount decimal.Decimal) (coupon.Verdict, error)
}

type CaptureRequest struct {
	Reference   string
	Method      payment.Method
	Amount      decimal.Decimal
	Currency    string
	OrderNumber string
}

// CaptureHandle is what the customer is redirected to; it is not a payment.
type CaptureHandle struct {
	Reference   string
	RedirectURL string
}

type PaymentGateway interface {
	InitiateExternalCapture(ctx context.Context, req CaptureRequest) (CaptureHandle, error)
}
