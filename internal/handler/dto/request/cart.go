package request

import (
	"time"

	"rental-engine/internal/domain/pricing"
	"rental-engine/internal/usecase/commands"

	"github.com/google/uuid"
)

type CartLineRequest struct {
	ProductID  uuid.UUID  `json:"product_id" binding:"required"`
	VariantID  *uuid.UUID `json:"variant_id"`
	PeriodType string     `json:"period_type" binding:"required,oneof=hour day week custom"`
	StartDate  time.Time  `json:"start_date" binding:"required"`
	EndDate    time.Time  `json:"end_date" binding:"required"`
	Quantity   int        `json:"quantity" binding:"required"`
}

func (r *CartLineRequest) ToInput() commands.LineInput {
	return commands.LineInput{
		ProductID:  r.ProductID,
		VariantID:  r.VariantID,
		PeriodType: pricing.PeriodType(r.PeriodType),
		Start:      r.StartDate,
		End:        r.EndDate,
		Quantity:   r.Quantity,
	}
}

type UpdateQuantityRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int        `json:"quantity" binding:"required"`
}

func (r *UpdateQuantityRequest) Ref() commands.LineRef {
	return commands.LineRef{ProductID: r.ProductID, VariantID: r.VariantID}
}

// RemoveLineRequest is read from the query string.
type RemoveLineRequest struct {
	ProductID string `form:"product_id" binding:"required,uuid"`
	VariantID string `form:"variant_id" binding:"omitempty,uuid"`
}

func (r *RemoveLineRequest) Ref() commands.LineRef {
	ref := commands.LineRef{ProductID: uuid.MustParse(r.ProductID)}
	if r.VariantID != "" {
		v := uuid.MustParse(r.VariantID)
		ref.VariantID = &v
	}
	return ref
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}
