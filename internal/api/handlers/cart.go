package handlers

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
)

// AddItemRequest is the payload for adding a variant to the cart.
type AddItemRequest struct {
	ProductVariantID string `json:"productVariantId" binding:"required"`
	Quantity         int    `json:"quantity" binding:"required,min=1"`
}

// QuantityRequest is the payload for changing a line's quantity.
type QuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// CartResponse is the cart snapshot sent back after every cart call.
type CartResponse struct {
	Cart domain.Cart `json:"cart"`
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		snapshot, err := session.Cart.Refresh(c.Request.Context())
		if err != nil && !goerrors.Is(err, cart.ErrSuperseded) {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, CartResponse{Cart: snapshot})
	}
}

// HandleAddItem handles POST /v1/cart/items
func HandleAddItem(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		snapshot, err := session.Cart.AddItem(c.Request.Context(), req.ProductVariantID, req.Quantity)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, CartResponse{Cart: snapshot})
	}
}

// HandleUpdateItem handles PUT /v1/cart/items/:variantId
//
// This is the single-step increment/decrement path: it dispatches
// immediately and cancels any pending debounced edit for the line.
func HandleUpdateItem(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req QuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		snapshot, err := session.Cart.UpdateItem(c.Request.Context(), c.Param("variantId"), req.Quantity)
		if err != nil && !goerrors.Is(err, cart.ErrSuperseded) {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, CartResponse{Cart: snapshot})
	}
}

// HandleDeferUpdateItem handles PATCH /v1/cart/items/:variantId
//
// The free-text quantity path: edits are coalesced per line and only the
// last one within the quiet period reaches the upstream cart service. The
// request is acknowledged immediately with the last confirmed snapshot.
func HandleDeferUpdateItem(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req QuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		session.Cart.UpdateItemDebounced(c.Param("variantId"), req.Quantity, nil)
		c.JSON(http.StatusAccepted, CartResponse{Cart: session.Cart.Snapshot()})
	}
}

// HandleRemoveItem handles DELETE /v1/cart/items/:variantId
func HandleRemoveItem(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		snapshot, err := session.Cart.RemoveItem(c.Request.Context(), c.Param("variantId"))
		if err != nil && !goerrors.Is(err, cart.ErrSuperseded) {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, CartResponse{Cart: snapshot})
	}
}

// HandleClearCart handles DELETE /v1/cart
func HandleClearCart(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		snapshot, err := session.Cart.Clear(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, CartResponse{Cart: snapshot})
	}
}
