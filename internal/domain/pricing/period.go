package pricing

import (
	"time"

	"rental-engine/internal/pkg/errs"
)

var (
	ErrUnknownPeriodType = errs.Mark(errs.New("unknown rental period type"), errs.ErrInvalidPeriod)
	ErrEmptyPeriod       = errs.Mark(errs.New("rental period must end after it starts"), errs.ErrInvalidPeriod)
	ErrNonPositiveQty    = errs.Mark(errs.New("quantity must be a positive integer"), errs.ErrInvalidQuantity)
)

type PeriodType string

const (
	PeriodHour   PeriodType = "hour"
	PeriodDay    PeriodType = "day"
	PeriodWeek   PeriodType = "week"
	PeriodCustom PeriodType = "custom"
)

func (p PeriodType) String() string { return string(p) }

func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodHour, PeriodDay, PeriodWeek, PeriodCustom:
		return true
	default:
		return false
	}
}

// Selection is what the customer picked for one rental line.
type Selection struct {
	periodType PeriodType
	start      time.Time
	end        time.Time
	quantity   int
}

func NewSelection(periodType PeriodType, start, end time.Time, quantity int) (Selection, error) {
	if !periodType.IsValid() {
		return Selection{}, errs.Wrapf(ErrUnknownPeriodType, "period type %q", periodType)
	}
	if !end.After(start) {
		return Selection{}, ErrEmptyPeriod
	}
	if quantity <= 0 {
		return Selection{}, errs.Wrapf(ErrNonPositiveQty, "quantity %d", quantity)
	}
	return Selection{
		periodType: periodType,
		start:      start.UTC(),
		end:        end.UTC(),
		quantity:   quantity,
	}, nil
}

// WithQuantity keeps the period and swaps the quantity.
func (s Selection) WithQuantity(quantity int) (Selection, error) {
	return NewSelection(s.periodType, s.start, s.end, quantity)
}

func (s Selection) PeriodType() PeriodType  { return s.periodType }
func (s Selection) Start() time.Time        { return s.start }
func (s Selection) End() time.Time          { return s.end }
func (s Selection) Quantity() int           { return s.quantity }
func (s Selection) Duration() time.Duration { return s.end.Sub(s.start) }

// billingUnits counts whole units of length unit needed to cover elapsed, rounding up.
func billingUnits(elapsed, unit time.Duration) int64 {
	if elapsed <= 0 || unit <= 0 {
		return 0
	}
	n := int64(elapsed / unit)
	if elapsed%unit != 0 {
		n++
	}
	return n
}
