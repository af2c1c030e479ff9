// Package pricing holds the pure order-total arithmetic. Everything here is
// side-effect free and works in currency minor units; display formatting
// lives in format.go and never feeds back into these numbers.
package pricing

// Total computes the payable amount. The result is clamped at zero: a
// combined discount and loyalty value can never drive the total negative.
func Total(subtotal, shippingFee, discountAmount, loyaltyValue int64) int64 {
	total := subtotal + shippingFee - discountAmount - loyaltyValue
	if total < 0 {
		return 0
	}
	return total
}

// PointsValue converts a point count to its monetary value at the configured
// fixed rate.
func PointsValue(points int, pointValue int64) int64 {
	if points <= 0 {
		return 0
	}
	return int64(points) * pointValue
}

// RedeemableCap is the most loyalty value that may be applied: the payable
// amount left net of the discount already applied. Shipping is not
// redeemable against.
func RedeemableCap(subtotal, discountAmount int64) int64 {
	cap := subtotal - discountAmount
	if cap < 0 {
		return 0
	}
	return cap
}

// ClampPoints bounds a requested point count to [0, available].
func ClampPoints(requested, available int) int {
	if requested < 0 {
		return 0
	}
	if requested > available {
		return available
	}
	return requested
}

// ClampQuantity bounds a requested line quantity to [1, inventoryCap].
func ClampQuantity(quantity, inventoryCap int) int {
	if quantity < 1 {
		return 1
	}
	if quantity > inventoryCap {
		return inventoryCap
	}
	return quantity
}

// Breakdown is a point-in-time total computation. It is rebuilt from the
// latest inputs at every checkout step transition rather than carried along.
type Breakdown struct {
	Subtotal       int64 `json:"subtotal"`
	ShippingFee    int64 `json:"shippingFee"`
	DiscountAmount int64 `json:"discountAmount"`
	LoyaltyValue   int64 `json:"loyaltyValue"`
	Total          int64 `json:"total"`
}

// NewBreakdown computes a Breakdown from raw inputs.
func NewBreakdown(subtotal, shippingFee, discountAmount, loyaltyValue int64) Breakdown {
	return Breakdown{
		Subtotal:       subtotal,
		ShippingFee:    shippingFee,
		DiscountAmount: discountAmount,
		LoyaltyValue:   loyaltyValue,
		Total:          Total(subtotal, shippingFee, discountAmount, loyaltyValue),
	}
}
