package errs

import "errors"

// Error kinds shared by the domain, usecase and handler layers.
// Concrete errors wrap or mark one of these so callers can branch with Is.
var (
	// Input errors, reported before any mutation
	ErrInvalidPricingTier = errors.New("invalid pricing tier")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidPeriod      = errors.New("invalid rental period")
	ErrValidation         = errors.New("validation failed")

	// Business rule errors
	ErrInsufficientAvailability  = errors.New("insufficient availability")
	ErrInvalidStateTransition    = errors.New("invalid state transition")
	ErrInsufficientWalletBalance = errors.New("insufficient wallet balance")
	ErrCouponInvalid             = errors.New("coupon invalid")
	ErrPaymentNotConfirmed       = errors.New("payment not confirmed")

	// Lookup / access
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// Persistence or an external collaborator failed; the caller may retry
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
