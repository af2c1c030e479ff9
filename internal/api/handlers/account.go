package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/domain"
)

// Address-book and loyalty-balance passthrough. The upstream user service
// owns this data; the storefront only relays it so the checkout page can
// offer saved addresses and the point balance.

// HandleListAddresses handles GET /v1/addresses
func HandleListAddresses(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if session.Guest {
			c.JSON(http.StatusOK, gin.H{"addresses": []domain.Address{}})
			return
		}

		addresses, err := session.Client.ListAddresses(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": addresses})
	}
}

// HandleCreateAddress handles POST /v1/addresses
func HandleCreateAddress(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var addr domain.Address
		if err := c.ShouldBindJSON(&addr); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		created, err := session.Client.CreateAddress(c.Request.Context(), addr)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"address": created})
	}
}

// HandleUpdateAddress handles PUT /v1/addresses/:id
func HandleUpdateAddress(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var addr domain.Address
		if err := c.ShouldBindJSON(&addr); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}
		addr.ID = c.Param("id")

		updated, err := session.Client.UpdateAddress(c.Request.Context(), addr)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"address": updated})
	}
}

// HandleDeleteAddress handles DELETE /v1/addresses/:id
func HandleDeleteAddress(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if err := session.Client.DeleteAddress(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// HandleSetDefaultAddress handles PUT /v1/addresses/:id/default
func HandleSetDefaultAddress(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if err := session.Client.SetDefaultAddress(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// HandleLoyaltyBalance handles GET /v1/loyalty/balance
func HandleLoyaltyBalance(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if session.Guest {
			c.JSON(http.StatusOK, gin.H{"loyaltyPoints": 0, "equivalentValue": 0})
			return
		}

		balance, err := session.Client.GetLoyaltyPoints(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, balance)
	}
}
