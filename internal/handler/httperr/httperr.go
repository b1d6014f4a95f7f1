package httperr

import (
	"log/slog"
	"net/http"

	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

const maxStackLines = 12

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

type kindMapping struct {
	kind   error
	status int
	msg    string
}

// First match wins.
var kindMappings = []kindMapping{
	{errs.ErrInvalidPricingTier, http.StatusBadRequest, "Invalid pricing tier"},
	{errs.ErrInvalidQuantity, http.StatusBadRequest, "Invalid quantity"},
	{errs.ErrInvalidPeriod, http.StatusBadRequest, "Invalid rental period"},
	{errs.ErrValidation, http.StatusBadRequest, "Invalid request"},
	{errs.ErrNotFound, http.StatusNotFound, "Not found"},
	{errs.ErrForbidden, http.StatusForbidden, "Access denied"},
	{errs.ErrInsufficientAvailability, http.StatusConflict, "Insufficient availability"},
	{errs.ErrInvalidStateTransition, http.StatusConflict, "Invalid state transition"},
	{errs.ErrInsufficientWalletBalance, http.StatusPaymentRequired, "Insufficient wallet balance"},
	{errs.ErrCouponInvalid, http.StatusUnprocessableEntity, "Coupon invalid"},
	{errs.ErrPaymentNotConfirmed, http.StatusAccepted, "Payment not confirmed"},
	{errs.ErrDependencyUnavailable, http.StatusServiceUnavailable, "Service temporarily unavailable"},
}

// Status resolves the HTTP status and public message for an error kind.
// Unknown errors are internal.
func Status(err error) (int, string) {
	for _, m := range kindMappings {
		if errs.Is(err, m.kind) {
			return m.status, m.msg
		}
	}
	return http.StatusInternalServerError, "Internal error"
}

// Abort answers with the status of err's kind. Client errors carry the error
// text in detail; server errors do not leak it.
func Abort(c *gin.Context, err error) {
	status, msg := Status(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "Request failed",
			"route", c.FullPath(),
			"status", status,
			"error", err.Error(),
			"stack", errs.ExtractStackLines(err, maxStackLines))
	}
	AbortWithError(c, status, err, msg, detailOf(err, status))
}

func detailOf(err error, status int) any {
	var rejected *coupon.RejectedError
	if errs.As(err, &rejected) {
		return gin.H{"code": rejected.Code.String(), "reason": rejected.Reason}
	}
	var transition *order.TransitionError
	if errs.As(err, &transition) {
		return gin.H{"current": transition.From.String(), "event": transition.Event.String(), "requested": transition.To.String()}
	}
	if status >= http.StatusInternalServerError {
		return nil
	}
	return gin.H{"reason": err.Error()}
}
