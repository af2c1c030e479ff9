package commerce

import (
	"github.com/jafarshop/storefront/internal/domain"
)

// AddItemRequest is the payload for POST /cart/items.
type AddItemRequest struct {
	ProductVariantID string `json:"productVariantId"`
	Quantity         int    `json:"quantity"`
}

// UpdateItemRequest is the payload for PUT /cart/items/:variantId.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// VerifyDiscountRequest is the payload for POST /orders/verify-discount.
type VerifyDiscountRequest struct {
	Code string `json:"code"`
}

// VerifyDiscountResponse carries the server-computed discount amount.
type VerifyDiscountResponse struct {
	DiscountAmount int64 `json:"discountAmount"`
}

// ApplyPointsRequest is the payload for POST /orders/user/apply-loyalty-points.
type ApplyPointsRequest struct {
	Points int `json:"points"`
}

// ApplyPointsResponse carries the server-confirmed redemption. PointsValue is
// capped server-side at the payable amount net of any applied discount.
type ApplyPointsResponse struct {
	PointsApplied int   `json:"pointsApplied"`
	PointsValue   int64 `json:"pointsValue"`
}

// CreateOrderRequest is the consolidated payload for POST /orders.
type CreateOrderRequest struct {
	ShippingAddress   domain.Address       `json:"shippingAddress"`
	PaymentMethod     domain.PaymentMethod `json:"paymentMethod"`
	DiscountCode      *string              `json:"discountCode"`
	LoyaltyPointsUsed int                  `json:"loyaltyPointsUsed"`
	Notes             string               `json:"notes,omitempty"`
	Email             string               `json:"email,omitempty"`
}

type createOrderResponse struct {
	Order domain.Order `json:"order"`
}
