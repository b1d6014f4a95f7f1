package api

import (
	"net/http"

	"rental-engine/internal/domain/actor"
	reqdto "rental-engine/internal/handler/dto/request"
	resdto "rental-engine/internal/handler/dto/response"
	"rental-engine/internal/handler/httperr"
	"rental-engine/internal/usecase/commands"
	"rental-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	checkout  commands.CheckoutCommands
	lifecycle commands.OrderLifecycle
	orders    queries.OrderQueries
	invoices  queries.InvoiceQueries
}

func NewOrderHandler(
	checkout commands.CheckoutCommands,
	lifecycle commands.OrderLifecycle,
	orders queries.OrderQueries,
	invoices queries.InvoiceQueries,
) *OrderHandler {
	return &OrderHandler{
		checkout:  checkout,
		lifecycle: lifecycle,
		orders:    orders,
		invoices:  invoices,
	}
}

// @Summary Place order
// @Description Converts the cart into an order with its invoice and starts payment
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.PlaceOrderRequest true "Checkout details"
// @Success 201 {object} resdto.PlaceOrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 402 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req reqdto.PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.checkout.PlaceOrder(c.Request.Context(), req.ToInput(a.ID))
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	view, ok := h.readOrder(c, a, result.Order.ID())
	if !ok {
		return
	}
	c.Header("Location", "/api/orders/"+result.Order.ID().String())
	c.JSON(http.StatusCreated, resdto.NewPlaceOrderResponse(view, result))
}

// @Summary List orders
// @Description Customers see their orders, vendors the orders they fulfil, admins all. Newest first.
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Order status"
// @Param payment_status query string false "paid or unpaid"
// @Param return_status query string false "approaching: return due within 24h or overdue"
// @Param limit query int false "Page size (default 20, max 200)"
// @Param after query string false "Cursor from the previous page"
// @Success 200 {object} resdto.OrderListResponse
// @Failure 400 {object} httperr.Response
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req reqdto.ListOrdersRequest
	if !bindQuery(c, &req) {
		return
	}

	var cursor *queries.Cursor
	if req.After != "" {
		cursor = &queries.Cursor{After: req.After}
	}
	items, next, err := h.orders.List(c.Request.Context(), a, req.ToParams(), cursor, req.Limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromOrderList(items, next)
	render(c, http.StatusOK, res, err)
}

// @Summary Get order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if view, ok := h.readOrder(c, a, id); ok {
		c.JSON(http.StatusOK, view)
	}
}

// @Summary Transition order
// @Description Applies a lifecycle event (confirm, schedule_pickup, mark_picked_up, mark_returned, cancel)
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.TransitionRequest true "Event"
// @Success 200 {object} resdto.TransitionResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /orders/{id}/transitions [post]
func (h *OrderHandler) Transition(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reqdto.TransitionRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.lifecycle.TransitionOrder(c.Request.Context(), req.ToInput(id, a))
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	view, ok := h.readOrder(c, a, id)
	if !ok {
		return
	}
	res, err := resdto.NewTransitionResponse(view, result)
	render(c, http.StatusOK, res, err)
}

// @Summary Get order invoice
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.InvoiceResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	iv, err := h.invoices.GetByOrderID(c.Request.Context(), a, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromInvoiceView(iv)
	render(c, http.StatusOK, res, err)
}

// @Summary List invoice payments
// @Description Every payment attempt against the invoice, oldest first
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} resdto.InvoicePaymentsResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /invoices/{id}/payments [get]
func (h *OrderHandler) InvoicePayments(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payments, err := h.invoices.ListPayments(c.Request.Context(), a, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromInvoicePayments(id, payments)
	render(c, http.StatusOK, res, err)
}

func (h *OrderHandler) readOrder(c *gin.Context, a actor.Actor, id uuid.UUID) (*resdto.OrderResponse, bool) {
	ov, err := h.orders.GetByID(c.Request.Context(), a, id)
	if err != nil {
		httperr.Abort(c, err)
		return nil, false
	}
	res, err := resdto.FromOrderView(ov)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return nil, false
	}
	return res, true
}
