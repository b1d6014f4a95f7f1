//go:build unit

package api_test

import (
	"net/http"
	"time"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/domain/order"
	"rental-engine/internal/handler/middleware"
	"rental-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const roleHeader = "X-Test-Role"

// fakeAuth authenticates any bearer token as userID. The role defaults to
// customer and can be overridden per request.
func fakeAuth(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		role := actor.RoleCustomer
		if r := c.GetHeader(roleHeader); r != "" {
			role = actor.Role(r)
		}
		middleware.SetActor(c, actor.Actor{ID: userID, Role: role})
		c.Next()
	}
}

func viewOf(o *order.Order) *queries.OrderView {
	v := &queries.OrderView{
		ID:              o.ID(),
		Number:          o.Number(),
		CustomerID:      o.CustomerID(),
		VendorID:        o.VendorID(),
		Status:          o.Status().String(),
		DeliveryAddress: o.DeliveryAddress(),
		PaymentMethod:   o.PaymentMethod().String(),
		Subtotal:        o.Subtotal(),
		TaxRate:         o.TaxRate(),
		TaxAmount:       o.TaxAmount(),
		SecurityDeposit: o.SecurityDeposit(),
		DiscountAmount:  o.DiscountAmount(),
		TotalAmount:     o.TotalAmount(),
		PaidAmount:      o.PaidAmount(),
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}
	for _, l := range o.Lines() {
		v.Lines = append(v.Lines, queries.OrderLineView{
			ID:           l.ID,
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			PeriodType:   l.PeriodType.String(),
			StartDate:    l.Start,
			EndDate:      l.End,
			Quantity:     l.Quantity,
			BillingUnits: l.BillingUnits,
			UnitPrice:    l.UnitPrice,
			TotalPrice:   l.TotalPrice,
		})
	}
	return v
}

var testNow = time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
