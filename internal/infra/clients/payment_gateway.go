package clients

import (
	"context"
	"net/http"
	"time"

	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

const capturesPath = "/captures"

type captureRequest struct {
	Reference   string          `json:"reference"`
	Method      string          `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	OrderNumber string          `json:"order_number"`
}

type captureResponse struct {
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirect_url"`
}

// PaymentGatewayClient opens captures on the external payment gateway.
// Results arrive later through the signed callback.
type PaymentGatewayClient struct {
	c jsonClient
}

func NewPaymentGatewayClient(baseURL, apiKey string, timeout time.Duration) *PaymentGatewayClient {
	return &PaymentGatewayClient{c: jsonClient{
		name:    "payment gateway",
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}}
}

func (g *PaymentGatewayClient) InitiateExternalCapture(ctx context.Context, req shared.CaptureRequest) (shared.CaptureHandle, error) {
	var resp captureResponse
	body := captureRequest{
		Reference:   req.Reference,
		Method:      req.Method.String(),
		Amount:      req.Amount,
		Currency:    req.Currency,
		OrderNumber: req.OrderNumber,
	}
	if err := g.c.postJSON(ctx, capturesPath, body, &resp); err != nil {
		return shared.CaptureHandle{}, err
	}

	// The callback is matched on our reference, so the gateway must echo it.
	if resp.Reference != "" && resp.Reference != req.Reference {
		return shared.CaptureHandle{}, g.c.unavailable(
			errs.Newf("gateway answered for reference %q, expected %q", resp.Reference, req.Reference))
	}

	return shared.CaptureHandle{Reference: req.Reference, RedirectURL: resp.RedirectURL}, nil
}
