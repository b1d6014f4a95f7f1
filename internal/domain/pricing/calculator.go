package pricing

import (
	"time"

	"rental-engine/internal/domain/catalog"
	"rental-engine/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingTier     = errs.Mark(errs.New("product has no price for the selected period type"), errs.ErrInvalidPricingTier)
	ErrNotRentable     = errs.Mark(errs.New("product is not rentable"), errs.ErrInvalidPricingTier)
	ErrNegativeLineFee = errs.Mark(errs.New("variant modifier drives the price below zero"), errs.ErrInvalidPricingTier)
)

const (
	hour = time.Hour
	day  = 24 * time.Hour
	week = 7 * day
)

type Quote struct {
	BillingUnits int64
	UnitPrice    decimal.Decimal
	TotalPrice   decimal.Decimal
}

type Calculator interface {
	Price(product *catalog.Product, variant *catalog.Variant, sel Selection) (Quote, error)
}

type DefaultCalculator struct{}

func NewDefaultCalculator() *DefaultCalculator {
	return &DefaultCalculator{}
}

// Price bills ceil(duration / unit) units of the tier rate, adds the variant
// modifier once, and multiplies by quantity.
func (c *DefaultCalculator) Price(product *catalog.Product, variant *catalog.Variant, sel Selection) (Quote, error) {
	if sel.Quantity() <= 0 {
		return Quote{}, errs.Wrapf(ErrNonPositiveQty, "quantity %d", sel.Quantity())
	}
	if !product.Rentable() {
		return Quote{}, errs.Wrapf(ErrNotRentable, "product %s", product.ID())
	}

	rate, unit, err := tierFor(product.Tiers(), sel.PeriodType())
	if err != nil {
		return Quote{}, errs.Wrapf(err, "product %s", product.ID())
	}

	units := billingUnits(sel.Duration(), unit)
	if units == 0 {
		return Quote{}, ErrEmptyPeriod
	}

	base := rate.Mul(decimal.NewFromInt(units))
	if variant != nil {
		base = base.Add(variant.PriceModifier)
	}
	if base.IsNegative() {
		return Quote{}, errs.Wrapf(ErrNegativeLineFee, "variant %s", variant.ID)
	}

	qty := decimal.NewFromInt(int64(sel.Quantity()))
	total := base.Mul(qty)

	return Quote{
		BillingUnits: units,
		UnitPrice:    total.Div(qty),
		TotalPrice:   total,
	}, nil
}

func tierFor(tiers catalog.Tiers, periodType PeriodType) (decimal.Decimal, time.Duration, error) {
	switch periodType {
	case PeriodHour:
		return rateOrMissing(tiers.Hourly, hour, periodType)
	case PeriodDay:
		return rateOrMissing(tiers.Daily, day, periodType)
	case PeriodWeek:
		return rateOrMissing(tiers.Weekly, week, periodType)
	case PeriodCustom:
		if tiers.Custom == nil {
			return decimal.Zero, 0, errs.Wrapf(ErrMissingTier, "period %s", periodType)
		}
		return tiers.Custom.Price, time.Duration(tiers.Custom.Days) * day, nil
	default:
		return decimal.Zero, 0, errs.Wrapf(ErrUnknownPeriodType, "period type %q", periodType)
	}
}

func rateOrMissing(rate *decimal.Decimal, unit time.Duration, periodType PeriodType) (decimal.Decimal, time.Duration, error) {
	if rate == nil {
		return decimal.Zero, 0, errs.Wrapf(ErrMissingTier, "period %s", periodType)
	}
	return *rate, unit, nil
}
