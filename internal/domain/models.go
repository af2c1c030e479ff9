package domain

import (
	"time"
)

// CartLine represents one purchasable variant in the cart. Lines are never
// mutated in place; every mutating cart call replaces the whole snapshot with
// the server's response.
type CartLine struct {
	VariantID    string `json:"productVariantId"`
	ProductName  string `json:"productName,omitempty"`
	UnitPrice    int64  `json:"unitPrice"`
	Quantity     int    `json:"quantity"`
	InventoryCap int    `json:"inventoryCap"`
}

// LineTotal returns unit price times quantity in minor units.
func (l CartLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Cart is the server-authoritative cart snapshot. Subtotal and ItemCount are
// computed server-side and treated as ground truth; the client only derives
// them for optimistic pre-validation.
type Cart struct {
	Lines     []CartLine `json:"items"`
	Subtotal  int64      `json:"subtotal"`
	ItemCount int        `json:"itemCount"`
}

// Line returns the cart line for the given variant, if present.
func (c Cart) Line(variantID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.VariantID == variantID {
			return l, true
		}
	}
	return CartLine{}, false
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Address is a shipping address, either saved in the user's address book or
// entered during checkout. The validate tags drive the shipping-step gate.
type Address struct {
	ID           string `json:"id,omitempty"`
	FullName     string `json:"fullName" validate:"required"`
	PhoneNumber  string `json:"phoneNumber" validate:"required"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	PostalCode   string `json:"postalCode" validate:"required"`
	Country      string `json:"country" validate:"required"`
	IsDefault    bool   `json:"isDefault,omitempty"`
}

// LoyaltyBalance is the user's redeemable point balance as reported by the
// upstream API, with its equivalent monetary value in minor units.
type LoyaltyBalance struct {
	Points          int   `json:"loyaltyPoints"`
	EquivalentValue int64 `json:"equivalentValue"`
}

// Order is the server-owned result of a successful submission. It is
// immutable from this service's perspective.
type Order struct {
	OrderNumber       string        `json:"orderNumber"`
	Total             int64         `json:"total"`
	ShippingAddress   Address       `json:"shippingAddress"`
	PaymentMethod     PaymentMethod `json:"paymentMethod"`
	DiscountCode      string        `json:"discountCode,omitempty"`
	LoyaltyPointsUsed int           `json:"loyaltyPointsUsed"`
	Notes             string        `json:"notes,omitempty"`
	Items             []CartLine    `json:"items"`
	CreatedAt         time.Time     `json:"createdAt"`
}
