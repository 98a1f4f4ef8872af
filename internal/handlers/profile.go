package handlers

import (
	"errors"
	"net/http"

	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	db          *gorm.DB
	userService services.UserService
}

func NewProfileHandler(db *gorm.DB, userService services.UserService) *ProfileHandler {
	return &ProfileHandler{db: db, userService: userService}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserProfile(h.db, actor.ID)
	if err != nil {
		handleProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		Username *string `json:"username" binding:"omitempty,min=3,max=50"`
		Email    *string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid profile data",
			"details": err.Error(),
		})
		return
	}

	user, err := h.userService.UpdateProfile(h.db, actor.ID, services.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		handleProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func handleProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "user_not_found",
			"message": "User not found",
		})
	case errors.Is(err, services.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "duplicate_username",
			"message": "This username is already taken",
			"field":   "username",
		})
	case errors.Is(err, services.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "duplicate_email",
			"message": "An account with this email already exists",
			"field":   "email",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "profile_request_failed",
			"message": "Failed to process profile request",
		})
	}
}
