package api

import (
	"net/http"

	reqdto "rental-engine/internal/handler/dto/request"
	resdto "rental-engine/internal/handler/dto/response"
	"rental-engine/internal/handler/httperr"
	"rental-engine/internal/usecase/commands"
	"rental-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments commands.PaymentReconciler
	orders   queries.OrderQueries
}

func NewPaymentHandler(payments commands.PaymentReconciler, orders queries.OrderQueries) *PaymentHandler {
	return &PaymentHandler{payments: payments, orders: orders}
}

// @Summary Pay for an order
// @Description Wallet payments settle immediately. External methods return a capture to confirm with the gateway (202).
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.ApplyPaymentRequest true "Payment"
// @Success 200 {object} resdto.PaymentResultResponse
// @Success 202 {object} resdto.PaymentResultResponse
// @Failure 400 {object} httperr.Response
// @Failure 402 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /orders/{id}/payments [post]
func (h *PaymentHandler) Pay(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reqdto.ApplyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.payments.ApplyPayment(c.Request.Context(), req.ToInput(id, a))
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	ov, err := h.orders.GetByID(c.Request.Context(), a, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	view, err := resdto.FromOrderView(ov)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}

	status := http.StatusOK
	if !result.Confirmed {
		status = http.StatusAccepted
	}
	c.JSON(status, resdto.NewPaymentResultResponse(view, result))
}

// @Summary Payment gateway callback
// @Description Confirms or fails an external capture. The body must be signed with the shared secret in X-Signature.
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Signature header string true "Keyed BLAKE2b-256 of the raw body, hex"
// @Param request body reqdto.CaptureCallbackRequest true "Capture outcome"
// @Success 200 {object} resdto.CallbackResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /payments/callback [post]
func (h *PaymentHandler) Callback(c *gin.Context) {
	var req reqdto.CaptureCallbackRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.payments.ConfirmExternalCapture(c.Request.Context(), req.ToConfirmation())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.NewCallbackResponse(req.Reference, result))
}
