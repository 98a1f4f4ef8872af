package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Token is a persisted refresh token. Rows are deleted on rotation,
// revocation, or expiry; the access token itself is never stored.
type Token struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	RefreshToken uuid.UUID `json:"refresh_token" gorm:"uniqueIndex;type:uuid;not null"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
