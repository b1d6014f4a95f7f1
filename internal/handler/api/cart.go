package api

import (
	"net/http"

	reqdto "rental-engine/internal/handler/dto/request"
	resdto "rental-engine/internal/handler/dto/response"
	"rental-engine/internal/handler/httperr"
	"rental-engine/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cmds commands.CartCommands
}

func NewCartHandler(cmds commands.CartCommands) *CartHandler {
	return &CartHandler{cmds: cmds}
}

// @Summary Price a rental line
// @Description Quote one product, variant and period without touching the cart
// @Tags pricing
// @Accept json
// @Produce json
// @Param request body reqdto.CartLineRequest true "Line to price"
// @Success 200 {object} resdto.QuoteResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /pricing/quote [post]
func (h *CartHandler) Quote(c *gin.Context) {
	var req reqdto.CartLineRequest
	if !bindJSON(c, &req) {
		return
	}
	quote, err := h.cmds.PriceLine(c.Request.Context(), req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromLineQuote(quote)
	render(c, http.StatusOK, res, err)
}

// @Summary Get cart
// @Description Current cart, repriced against the catalog
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CartResponse
// @Failure 401 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	view, err := h.cmds.Get(c.Request.Context(), a.ID)
	h.respond(c, view, err)
}

// @Summary Add or replace a cart line
// @Description Re-adding the same product and variant replaces its period and quantity
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CartLineRequest true "Cart line"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /cart/lines [post]
func (h *CartHandler) AddLine(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req reqdto.CartLineRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.cmds.AddOrReplaceLine(c.Request.Context(), a.ID, req.ToInput())
	h.respond(c, view, err)
}

// @Summary Change a line's quantity
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.UpdateQuantityRequest true "New quantity"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /cart/lines [patch]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req reqdto.UpdateQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.cmds.UpdateQuantity(c.Request.Context(), a.ID, req.Ref(), req.Quantity)
	h.respond(c, view, err)
}

// @Summary Remove a cart line
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param product_id query string true "Product ID"
// @Param variant_id query string false "Variant ID"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /cart/lines [delete]
func (h *CartHandler) RemoveLine(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req reqdto.RemoveLineRequest
	if !bindQuery(c, &req) {
		return
	}
	view, err := h.cmds.RemoveLine(c.Request.Context(), a.ID, req.Ref())
	h.respond(c, view, err)
}

// @Summary Clear cart
// @Tags cart
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 503 {object} httperr.Response
// @Router /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.cmds.Clear(c.Request.Context(), a.ID); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Apply coupon
// @Description Validates the code with the pricing policy service and replaces any active coupon
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ApplyCouponRequest true "Coupon code"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /cart/coupon [post]
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req reqdto.ApplyCouponRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.cmds.ApplyCoupon(c.Request.Context(), a.ID, req.Code)
	h.respond(c, view, err)
}

// @Summary Remove coupon
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CartResponse
// @Router /cart/coupon [delete]
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	view, err := h.cmds.RemoveCoupon(c.Request.Context(), a.ID)
	h.respond(c, view, err)
}

func (h *CartHandler) respond(c *gin.Context, view *commands.CartView, err error) {
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromCartView(view)
	render(c, http.StatusOK, res, err)
}
