package handlers

import (
	"net/http"

	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

// currentActor pulls the identity set by the authz middleware out of the
// request context. A missing identity aborts with 401.
func currentActor(c *gin.Context) (services.Actor, bool) {
	userIDValue, exists := c.Get("user_id")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "not_authenticated",
			"message": "User not authenticated",
		})
		return services.Actor{}, false
	}

	userID, ok := userIDValue.(uuid.UUID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "invalid_identity",
			"message": "Invalid user ID format",
		})
		return services.Actor{}, false
	}

	return services.Actor{ID: userID, Role: c.GetString("user_role")}, true
}
