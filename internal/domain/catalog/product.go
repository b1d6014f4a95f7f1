package catalog

import (
	"strings"

	"rental-engine/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errs.Mark(errs.New("product not found"), errs.ErrNotFound)
	ErrVariantNotFound   = errs.Mark(errs.New("variant not found"), errs.ErrNotFound)
	ErrProductNotPriced  = errs.Mark(errs.New("rentable product has no rental price"), errs.ErrInvalidPricingTier)
	ErrNegativeTierPrice = errs.Mark(errs.New("tier price cannot be negative"), errs.ErrInvalidPricingTier)
	ErrInvalidCustomDays = errs.Mark(errs.New("custom period must span at least one day"), errs.ErrInvalidPricingTier)
	ErrNegativeStock     = errs.Mark(errs.New("available quantity cannot be negative"), errs.ErrValidation)
	ErrEmptyProductName  = errs.Mark(errs.New("product name cannot be empty"), errs.ErrValidation)
)

// CustomPeriod prices a vendor-defined block of whole days.
type CustomPeriod struct {
	Days  int
	Price decimal.Decimal
}

// Tiers is the rental price list of a product. A nil tier is not offered.
type Tiers struct {
	Hourly *decimal.Decimal
	Daily  *decimal.Decimal
	Weekly *decimal.Decimal
	Custom *CustomPeriod
}

func (t Tiers) isEmpty() bool {
	return t.Hourly == nil && t.Daily == nil && t.Weekly == nil && t.Custom == nil
}

func (t Tiers) validate() error {
	for _, p := range []*decimal.Decimal{t.Hourly, t.Daily, t.Weekly} {
		if p != nil && p.IsNegative() {
			return ErrNegativeTierPrice
		}
	}
	if t.Custom != nil {
		if t.Custom.Days <= 0 {
			return ErrInvalidCustomDays
		}
		if t.Custom.Price.IsNegative() {
			return ErrNegativeTierPrice
		}
	}
	return nil
}

type Variant struct {
	ID            uuid.UUID
	Name          string
	PriceModifier decimal.Decimal
}

// Product is a read-only view of a catalog item as the pricing engine needs it.
type Product struct {
	id                uuid.UUID
	vendorID          uuid.UUID
	name              string
	rentable          bool
	tiers             Tiers
	availableQuantity int
	variants          []Variant
}

func NewProduct(id, vendorID uuid.UUID, name string, rentable bool, tiers Tiers, availableQuantity int, variants []Variant) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyProductName
	}
	if availableQuantity < 0 {
		return nil, ErrNegativeStock
	}
	if err := tiers.validate(); err != nil {
		return nil, err
	}
	if rentable && tiers.isEmpty() {
		return nil, ErrProductNotPriced
	}

	return &Product{
		id:                id,
		vendorID:          vendorID,
		name:              name,
		rentable:          rentable,
		tiers:             tiers,
		availableQuantity: availableQuantity,
		variants:          variants,
	}, nil
}

// Variant resolves an optional variant id against the product. A nil id means no variant.
func (p *Product) Variant(id *uuid.UUID) (*Variant, error) {
	if id == nil {
		return nil, nil
	}
	for i := range p.variants {
		if p.variants[i].ID == *id {
			v := p.variants[i]
			return &v, nil
		}
	}
	return nil, errs.Wrapf(ErrVariantNotFound, "variant %s of product %s", *id, p.id)
}

func (p *Product) ID() uuid.UUID          { return p.id }
func (p *Product) VendorID() uuid.UUID    { return p.vendorID }
func (p *Product) Name() string           { return p.name }
func (p *Product) Rentable() bool         { return p.rentable }
func (p *Product) Tiers() Tiers           { return p.tiers }
func (p *Product) AvailableQuantity() int { return p.availableQuantity }
func (p *Product) Variants() []Variant    { return append([]Variant(nil), p.variants...) }
