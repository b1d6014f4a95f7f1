//go:build unit

package httperr

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rental-engine/internal/domain/coupon"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"tier", errs.Mark(errs.New("x"), errs.ErrInvalidPricingTier), http.StatusBadRequest},
		{"quantity", errs.Mark(errs.New("x"), errs.ErrInvalidQuantity), http.StatusBadRequest},
		{"period", errs.Mark(errs.New("x"), errs.ErrInvalidPeriod), http.StatusBadRequest},
		{"validation", errs.Mark(errs.New("x"), errs.ErrValidation), http.StatusBadRequest},
		{"not found", errs.Mark(errs.New("x"), errs.ErrNotFound), http.StatusNotFound},
		{"forbidden", errs.Mark(errs.New("x"), errs.ErrForbidden), http.StatusForbidden},
		{"availability", errs.Mark(errs.New("x"), errs.ErrInsufficientAvailability), http.StatusConflict},
		{"transition", &order.TransitionError{From: order.StatusCompleted, Event: order.EventCancel, To: order.StatusCancelled}, http.StatusConflict},
		{"wallet", errs.Mark(errs.New("x"), errs.ErrInsufficientWalletBalance), http.StatusPaymentRequired},
		{"coupon", &coupon.RejectedError{Code: "X", Reason: "expired"}, http.StatusUnprocessableEntity},
		{"payment pending", errs.Mark(errs.New("x"), errs.ErrPaymentNotConfirmed), http.StatusAccepted},
		{"dependency", errs.Mark(errs.New("x"), errs.ErrDependencyUnavailable), http.StatusServiceUnavailable},
		{"wrapped kind survives", errs.Wrap(errs.Mark(errs.New("x"), errs.ErrNotFound), "loading order"), http.StatusNotFound},
		{"unknown", errs.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := Status(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(err error) (int, map[string]any) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Abort(c, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, c.Errors, 1)
		return w.Code, body
	}

	t.Run("client error exposes its reason", func(t *testing.T) {
		code, body := run(errs.Mark(errs.New("quantity must be positive"), errs.ErrInvalidQuantity))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, map[string]any{"reason": "quantity must be positive"}, body["detail"])
	})

	t.Run("server error hides its cause", func(t *testing.T) {
		code, body := run(errs.New("pq: password authentication failed"))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.NotContains(t, body, "detail")
		assert.Equal(t, map[string]any{"message": "Internal error"}, body["error"])
	})

	t.Run("transition error names the states", func(t *testing.T) {
		code, body := run(errs.Wrap(&order.TransitionError{From: order.StatusPending, Event: order.EventMarkReturned, To: order.StatusCompleted}, "order 42"))
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, map[string]any{"current": "pending", "event": "mark_returned", "requested": "completed"}, body["detail"])
	})
}
