package coupon

import (
	"strings"
	"unicode/utf8"

	"rental-engine/internal/pkg/errs"
)

var ErrInvalidCouponCode = errs.Mark(errs.New("invalid coupon code format"), errs.ErrValidation)

// MaxCodeLength matches the policy service's code column.
const MaxCodeLength = 50

type Code string

// NewCouponCode normalizes user input the way the policy service stores codes.
// Whether the code exists is left to the policy service.
func NewCouponCode(code string) (Code, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if n := utf8.RuneCountInString(code); n == 0 || n > MaxCodeLength {
		return Code(""), ErrInvalidCouponCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}
