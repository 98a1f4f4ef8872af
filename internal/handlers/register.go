package handlers

import (
	"errors"
	"log"
	"net/http"

	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterHandler struct {
	db              *gorm.DB
	registerService services.RegisterService
	authService     services.AuthService
}

func NewRegisterHandler(db *gorm.DB, registerService services.RegisterService, authService services.AuthService) *RegisterHandler {
	return &RegisterHandler{db: db, registerService: registerService, authService: authService}
}

func (h *RegisterHandler) Registration(c *gin.Context) {
	var req services.RegistrationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid registration data",
			"details": err.Error(),
		})
		return
	}

	user, err := h.registerService.RegisterUser(h.db, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "duplicate_email",
				"message": "An account with this email already exists",
				"field":   "email",
			})
		case errors.Is(err, services.ErrDuplicateUsername):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "duplicate_username",
				"message": "This username is already taken",
				"field":   "username",
			})
		default:
			log.Printf("registration error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "registration_failed",
				"message": "An unexpected error occurred. Please try again later.",
			})
		}
		return
	}

	accessToken, refreshToken, err := h.authService.GenerateTokens(h.db, user)
	if err != nil {
		log.Printf("token generation error after registration: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "token_generation_failed",
			"message": "Account created but token issuance failed, please log in",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"access":  accessToken,
		"refresh": refreshToken,
	})
}
