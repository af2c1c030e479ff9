package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/discount"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/loyalty"
	"github.com/jafarshop/storefront/internal/pricing"
)

// CheckoutResponse is the wizard state echoed after every checkout call, so
// the front-end never renders a stale total.
type CheckoutResponse struct {
	Step           domain.CheckoutStep `json:"step"`
	Totals         pricing.Breakdown   `json:"totals"`
	FormattedTotal string              `json:"formattedTotal"`
	Discount       discount.State      `json:"discount"`
	Loyalty        loyalty.Redemption  `json:"loyalty"`
}

// ShippingRequest selects a saved address or carries a fresh one, plus the
// guest email when there is no account.
type ShippingRequest struct {
	AddressID string          `json:"addressId,omitempty"`
	Address   *domain.Address `json:"address,omitempty"`
	Email     string          `json:"email,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// PaymentRequest chooses the payment method.
type PaymentRequest struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" binding:"required"`
}

// DiscountRequest carries the discount code to verify.
type DiscountRequest struct {
	Code string `json:"code" binding:"required"`
}

// PointsRequest redeems loyalty points; UseAll redeems the whole balance.
type PointsRequest struct {
	Points int  `json:"points"`
	UseAll bool `json:"useAll,omitempty"`
}

// OrderResponse carries the server-assigned order after a confirmed
// submission.
type OrderResponse struct {
	Order          domain.Order `json:"order"`
	FormattedTotal string       `json:"formattedTotal"`
}

func checkoutState(session *middleware.Session, formatter *pricing.Formatter) CheckoutResponse {
	totals := session.Wizard.Totals()
	return CheckoutResponse{
		Step:           session.Wizard.Step(),
		Totals:         totals,
		FormattedTotal: formatter.Format(totals.Total),
		Discount:       session.Wizard.Discount(),
		Loyalty:        session.Wizard.Loyalty(),
	}
}

// HandleGetCheckout handles GET /v1/checkout
func HandleGetCheckout(formatter *pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		session.Lock()
		defer session.Unlock()
		c.JSON(http.StatusOK, checkoutState(session, formatter))
	}
}

// HandleShipping handles POST /v1/checkout/shipping
//
// Resolves the shipping address (saved or fresh), records the guest email
// and notes, and advances past the Shipping gate.
func HandleShipping(formatter *pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req ShippingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		session.Lock()
		defer session.Unlock()

		switch {
		case req.AddressID != "":
			addresses, err := session.Client.ListAddresses(c.Request.Context())
			if err != nil {
				respondError(c, logger, err)
				return
			}
			found := false
			for _, addr := range addresses {
				if addr.ID == req.AddressID {
					session.Wizard.SetShippingAddress(addr)
					found = true
					break
				}
			}
			if !found {
				c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
				return
			}
		case req.Address != nil:
			session.Wizard.SetShippingAddress(*req.Address)
		}

		if req.Email != "" {
			session.Wizard.SetGuestEmail(req.Email)
		}
		if req.Notes != "" {
			session.Wizard.SetNotes(req.Notes)
		}

		if err := session.Wizard.Next(); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, checkoutState(session, formatter))
	}
}

// HandlePayment handles POST /v1/checkout/payment
func HandlePayment(formatter *pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		session.Lock()
		defer session.Unlock()

		if err := session.Wizard.SetPaymentMethod(req.PaymentMethod); err != nil {
			respondError(c, logger, err)
			return
		}
		if err := session.Wizard.Next(); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, checkoutState(session, formatter))
	}
}

// HandleBack handles POST /v1/checkout/back
func HandleBack(formatter *pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		session.Lock()
		defer session.Unlock()
		session.Wizard.Back()
		c.JSON(http.StatusOK, checkoutState(session, formatter))
	}
}

// HandleApplyDiscount handles POST /v1/checkout/discount
func HandleApplyDiscount(formatter *pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req DiscountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		session.Lock()
		defer session.Unlock()

		if _, err := session.Wizard.ApplyDiscount(c.Request.Context(), req.Code); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, checkoutState(session, formatter))
	}
}

// HandleRemoveDiscount handles DELETE /v1/checkout/discount
func HandleRemoveDiscount(formatter *pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		session.Lock()
		defer session.Unlock()
		session.Wizard.RemoveDiscount(c.Request.Context())
		c.JSON(http.StatusOK, checkoutState(session, formatter))
	}
}

// HandleApplyPoints handles POST /v1/checkout/loyalty
//
// The balance is refreshed first so the clamp runs against the server's
// current number, then the request goes through the normal redemption path.
func HandleApplyPoints(formatter *pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req PointsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		session.Lock()
		defer session.Unlock()

		// Guests have no points account, so their balance is zero and any
		// request clamps to a local reset without touching the upstream.
		if session.Guest {
			session.Wizard.DisablePoints()
			c.JSON(http.StatusOK, checkoutState(session, formatter))
			return
		}

		if _, err := session.Loyalty.RefreshBalance(c.Request.Context()); err != nil {
			respondError(c, logger, err)
			return
		}

		var err error
		if req.UseAll {
			_, err = session.Wizard.ApplyAllPoints(c.Request.Context())
		} else {
			_, err = session.Wizard.ApplyPoints(c.Request.Context(), req.Points)
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, checkoutState(session, formatter))
	}
}

// HandleDisablePoints handles DELETE /v1/checkout/loyalty
func HandleDisablePoints(formatter *pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		session.Lock()
		defer session.Unlock()
		session.Wizard.DisablePoints()
		c.JSON(http.StatusOK, checkoutState(session, formatter))
	}
}

// HandleConfirm handles POST /v1/checkout/confirm
func HandleConfirm(formatter *pricing.Formatter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		session.Lock()
		defer session.Unlock()

		order, err := session.Wizard.Confirm(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusCreated, OrderResponse{
			Order:          *order,
			FormattedTotal: formatter.Format(order.Total),
		})
	}
}

// PaymentMethodInfo describes one selectable payment method. Bank transfer
// carries static instructions; no gateway is involved.
type PaymentMethodInfo struct {
	Method       domain.PaymentMethod `json:"method"`
	Label        string               `json:"label"`
	Instructions string               `json:"instructions,omitempty"`
}

// HandlePaymentMethods handles GET /v1/checkout/payment-methods
func HandlePaymentMethods() gin.HandlerFunc {
	methods := []PaymentMethodInfo{
		{
			Method:       domain.PaymentMethodBankTransfer,
			Label:        "Bank transfer",
			Instructions: "Transfer the order total to account 123-456-7890 (Jafar Shop) and include your order number in the reference.",
		},
		{
			Method: domain.PaymentMethodCashOnDelivery,
			Label:  "Cash on delivery",
		},
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"paymentMethods": methods})
	}
}
