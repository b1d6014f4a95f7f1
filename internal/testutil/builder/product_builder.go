//go:build unit || integration

package builder

import (
	"rental-engine/internal/domain/catalog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductBuilder struct {
	ID                uuid.UUID
	VendorID          uuid.UUID
	Name              string
	Rentable          bool
	Tiers             catalog.Tiers
	AvailableQuantity int
	Variants          []catalog.Variant
}

func NewProductBuilder() *ProductBuilder {
	return &ProductBuilder{
		ID:                uuid.New(),
		VendorID:          uuid.New(),
		Name:              "DSLR Camera",
		Rentable:          true,
		Tiers:             catalog.Tiers{Daily: Dec("500")},
		AvailableQuantity: 10,
	}
}

func (b *ProductBuilder) With(mutate func(*ProductBuilder)) *ProductBuilder {
	mutate(b)
	return b
}

func (b *ProductBuilder) WithTiers(t catalog.Tiers) *ProductBuilder {
	b.Tiers = t
	return b
}

func (b *ProductBuilder) WithAvailable(n int) *ProductBuilder {
	b.AvailableQuantity = n
	return b
}

func (b *ProductBuilder) WithVariant(name, modifier string) *ProductBuilder {
	b.Variants = append(b.Variants, catalog.Variant{
		ID:            uuid.New(),
		Name:          name,
		PriceModifier: decimal.RequireFromString(modifier),
	})
	return b
}

func (b *ProductBuilder) Build() *catalog.Product {
	p, err := catalog.NewProduct(b.ID, b.VendorID, b.Name, b.Rentable, b.Tiers, b.AvailableQuantity, b.Variants)
	if err != nil {
		panic(err)
	}
	return p
}

// Dec parses a decimal literal and returns a pointer, for tier fields.
func Dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// D parses a decimal literal.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
