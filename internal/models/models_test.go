package models_test

import (
	"testing"
	"time"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
)

func TestTask_Defaults(t *testing.T) {
	task := models.Task{
		ID:     uuid.Must(uuid.NewV4()),
		UserID: uuid.Must(uuid.NewV4()),
		Title:  "Test Task",
	}

	if task.Completed {
		t.Error("Expected a new task to default to not completed")
	}

	if task.Description != "" {
		t.Errorf("Expected empty description, got '%s'", task.Description)
	}
}

func TestUser_IsAdmin(t *testing.T) {
	admin := models.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "admin",
		Email:    "admin@example.com",
		Role:     models.RoleAdmin,
	}

	if !admin.IsAdmin() {
		t.Error("Expected admin role to report IsAdmin")
	}

	user := models.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "regular",
		Email:    "regular@example.com",
		Role:     models.RoleUser,
	}

	if user.IsAdmin() {
		t.Error("Expected user role to not report IsAdmin")
	}
}

func TestToken_Validation(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	refreshToken := uuid.Must(uuid.NewV4())
	expiresAt := time.Now().Add(7 * 24 * time.Hour)

	token := models.Token{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       userID,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}

	if token.UserID != userID {
		t.Errorf("Expected UserID %s, got %s", userID.String(), token.UserID.String())
	}

	if token.RefreshToken != refreshToken {
		t.Errorf("Expected RefreshToken %s, got %s", refreshToken.String(), token.RefreshToken.String())
	}

	if token.ExpiresAt != expiresAt {
		t.Errorf("Expected ExpiresAt %v, got %v", expiresAt, token.ExpiresAt)
	}
}
