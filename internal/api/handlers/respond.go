package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/pkg/errors"
)

// respondError maps the error taxonomy onto HTTP statuses. Local validation
// and upstream rejections keep their messages; anything else is masked.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.IsInventory(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "inventory": true})
	case errors.IsRejected(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.IsNetwork(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable, please retry", "retryable": true})
	default:
		logger.Error("unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
