package commands

import (
	"github.com/shopspring/decimal"
)

// Settings are the business knobs the write side needs from configuration.
type Settings struct {
	TaxRate                  decimal.Decimal
	SecurityDepositRate      decimal.Decimal
	Currency                 string
	AutoConfirmOnFullPayment bool
	InvoiceDueDays           int
}
