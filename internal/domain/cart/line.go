package cart

import (
	"rental-engine/internal/domain/catalog"
	"rental-engine/internal/domain/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineKey identifies a cart line. VariantID is uuid.Nil when no variant was chosen.
type LineKey struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
}

func NewLineKey(productID uuid.UUID, variantID *uuid.UUID) LineKey {
	k := LineKey{ProductID: productID}
	if variantID != nil {
		k.VariantID = *variantID
	}
	return k
}

func (k LineKey) VariantPtr() *uuid.UUID {
	if k.VariantID == uuid.Nil {
		return nil
	}
	id := k.VariantID
	return &id
}

// Line prices are derived from the selection; they are never set directly.
type Line struct {
	product      *catalog.Product
	variant      *catalog.Variant
	selection    pricing.Selection
	billingUnits int64
	unitPrice    decimal.Decimal
	totalPrice   decimal.Decimal
}

func newLine(calc pricing.Calculator, product *catalog.Product, variant *catalog.Variant, sel pricing.Selection) (*Line, error) {
	quote, err := calc.Price(product, variant, sel)
	if err != nil {
		return nil, err
	}
	return &Line{
		product:      product,
		variant:      variant,
		selection:    sel,
		billingUnits: quote.BillingUnits,
		unitPrice:    quote.UnitPrice,
		totalPrice:   quote.TotalPrice,
	}, nil
}

func (l *Line) Key() LineKey {
	k := LineKey{ProductID: l.product.ID()}
	if l.variant != nil {
		k.VariantID = l.variant.ID
	}
	return k
}

func (l *Line) Product() *catalog.Product    { return l.product }
func (l *Line) Variant() *catalog.Variant    { return l.variant }
func (l *Line) Selection() pricing.Selection { return l.selection }
func (l *Line) Quantity() int                { return l.selection.Quantity() }
func (l *Line) BillingUnits() int64          { return l.billingUnits }
func (l *Line) UnitPrice() decimal.Decimal   { return l.unitPrice }
func (l *Line) TotalPrice() decimal.Decimal  { return l.totalPrice }
