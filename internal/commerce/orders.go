package commerce

import (
	"context"
	"net/http"

	"github.com/jafarshop/storefront/internal/domain"
)

// VerifyDiscount asks the server to validate a discount code and returns the
// discount amount it grants. Invalid or expired codes come back as
// ErrRejected with the server's message.
func (c *Client) VerifyDiscount(ctx context.Context, code string) (int64, error) {
	req := VerifyDiscountRequest{Code: code}
	var resp VerifyDiscountResponse
	if err := c.do(ctx, http.MethodPost, "/orders/verify-discount", req, &resp, nil); err != nil {
		return 0, err
	}
	return resp.DiscountAmount, nil
}

// ApplyLoyaltyPoints asks the server to value a point redemption. The server
// owns the true cap (subtotal minus discount) and may apply fewer points than
// requested.
func (c *Client) ApplyLoyaltyPoints(ctx context.Context, points int) (ApplyPointsResponse, error) {
	req := ApplyPointsRequest{Points: points}
	var resp ApplyPointsResponse
	if err := c.do(ctx, http.MethodPost, "/orders/user/apply-loyalty-points", req, &resp, nil); err != nil {
		return ApplyPointsResponse{}, err
	}
	return resp, nil
}

// CreateOrder submits the consolidated order. idempotencyKey deduplicates
// confirm retries after ambiguous failures.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest, idempotencyKey string) (*domain.Order, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}

	var resp createOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, &resp, headers); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}
