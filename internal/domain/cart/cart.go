package cart

import (
	"rental-engine/internal/domain/catalog"
	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/domain/pricing"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrLineNotFound = errs.Mark(errs.New("cart line not found"), errs.ErrNotFound)
	ErrOverStock    = errs.Mark(errs.New("requested quantity exceeds available stock"), errs.ErrInsufficientAvailability)
)

type Totals struct {
	ItemCount  int
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	Discount   decimal.Decimal
	FinalTotal decimal.Decimal
}

// Cart is the priced basket of one customer. It is not safe for concurrent use;
// callers load, mutate and save it within one request.
type Cart struct {
	customerID uuid.UUID
	lines      []*Line
	coupon     *coupon.Result
	calc       pricing.Calculator
	taxRate    decimal.Decimal
}

func New(customerID uuid.UUID, calc pricing.Calculator, taxRate decimal.Decimal) *Cart {
	return &Cart{
		customerID: customerID,
		calc:       calc,
		taxRate:    taxRate,
	}
}

// AddOrReplaceLine prices the selection and stores it under (product, variant).
// An existing line with the same key keeps its position and takes the new period and quantity.
func (c *Cart) AddOrReplaceLine(product *catalog.Product, variantID *uuid.UUID, sel pricing.Selection) (*Line, error) {
	if sel.Quantity() > product.AvailableQuantity() {
		return nil, errs.Wrapf(ErrOverStock, "product %s: requested %d, available %d",
			product.ID(), sel.Quantity(), product.AvailableQuantity())
	}
	return c.put(product, variantID, sel)
}

// Restore re-adds a persisted line without the stock check; checkout re-validates stock.
func (c *Cart) Restore(product *catalog.Product, variantID *uuid.UUID, sel pricing.Selection) (*Line, error) {
	return c.put(product, variantID, sel)
}

func (c *Cart) put(product *catalog.Product, variantID *uuid.UUID, sel pricing.Selection) (*Line, error) {
	variant, err := product.Variant(variantID)
	if err != nil {
		return nil, err
	}
	line, err := newLine(c.calc, product, variant, sel)
	if err != nil {
		return nil, err
	}

	if i := c.indexOf(line.Key()); i >= 0 {
		c.lines[i] = line
	} else {
		c.lines = append(c.lines, line)
	}
	return line, nil
}

func (c *Cart) RemoveLine(key LineKey) error {
	i := c.indexOf(key)
	if i < 0 {
		return ErrLineNotFound
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// UpdateQuantity reprices the line through the calculator for the new quantity.
func (c *Cart) UpdateQuantity(key LineKey, quantity int) (*Line, error) {
	i := c.indexOf(key)
	if i < 0 {
		return nil, ErrLineNotFound
	}
	old := c.lines[i]

	sel, err := old.selection.WithQuantity(quantity)
	if err != nil {
		return nil, err
	}
	if quantity > old.product.AvailableQuantity() {
		return nil, errs.Wrapf(ErrOverStock, "product %s: requested %d, available %d",
			old.product.ID(), quantity, old.product.AvailableQuantity())
	}

	line, err := newLine(c.calc, old.product, old.variant, sel)
	if err != nil {
		return nil, err
	}
	c.lines[i] = line
	return line, nil
}

// Clear empties the cart and drops the applied coupon.
func (c *Cart) Clear() {
	c.lines = nil
	c.coupon = nil
}

// ApplyCoupon replaces any previously applied coupon.
func (c *Cart) ApplyCoupon(result coupon.Result) {
	r := result
	c.coupon = &r
}

func (c *Cart) RemoveCoupon() {
	c.coupon = nil
}

func (c *Cart) Totals() Totals {
	subtotal := decimal.Zero
	items := 0
	for _, l := range c.lines {
		subtotal = subtotal.Add(l.totalPrice)
		items += l.Quantity()
	}
	tax := money.Percent(subtotal, c.taxRate)
	total := subtotal.Add(tax)

	t := Totals{
		ItemCount:  items,
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      total,
		Discount:   decimal.Zero,
		FinalTotal: total,
	}
	if c.coupon != nil {
		t.Discount, t.FinalTotal = c.coupon.ApplyTo(total)
	}
	return t
}

func (c *Cart) Line(key LineKey) (*Line, bool) {
	i := c.indexOf(key)
	if i < 0 {
		return nil, false
	}
	return c.lines[i], true
}

func (c *Cart) indexOf(key LineKey) int {
	for i, l := range c.lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

func (c *Cart) CustomerID() uuid.UUID    { return c.customerID }
func (c *Cart) Lines() []*Line           { return append([]*Line(nil), c.lines...) }
func (c *Cart) IsEmpty() bool            { return len(c.lines) == 0 }
func (c *Cart) Coupon() *coupon.Result   { return c.coupon }
func (c *Cart) TaxRate() decimal.Decimal { return c.taxRate }
