package services

import (
	"errors"
	"time"

	"taskify/backend/internal/config"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

type AuthService interface {
	LoginUser(db *gorm.DB, email, password string) (*models.User, error)
	GenerateTokens(db *gorm.DB, user *models.User) (string, string, error)
	RefreshToken(db *gorm.DB, refreshToken string) (string, string, int64, error)
	RevokeToken(db *gorm.DB, refreshToken string) error
}

type AuthServiceImpl struct {
	cfg config.AuthConfig
}

func NewAuthService(cfg config.AuthConfig) *AuthServiceImpl {
	return &AuthServiceImpl{cfg: cfg}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GenerateTokens issues a signed access token and a persisted opaque refresh
// token for the given user.
func (s *AuthServiceImpl) GenerateTokens(db *gorm.DB, user *models.User) (string, string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(s.cfg.AccessTokenTTL).Unix(),
		"iss":     s.cfg.Issuer,
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refreshTokenUUID, err := uuid.NewV4()
	if err != nil {
		return "", "", err
	}

	token := models.Token{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       user.ID,
		RefreshToken: refreshTokenUUID,
		ExpiresAt:    time.Now().Add(s.cfg.RefreshTokenTTL),
	}
	if err := db.Create(&token).Error; err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenUUID.String(), nil
}

// RefreshToken exchanges an unexpired refresh token for a fresh pair. The old
// token row is deleted so each refresh token can be redeemed once.
func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (string, string, int64, error) {
	tokenUUID, err := uuid.FromString(refreshToken)
	if err != nil {
		return "", "", 0, ErrInvalidRefreshToken
	}

	var token models.Token
	err = db.Where("refresh_token = ? AND expires_at > ?", tokenUUID, time.Now()).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", 0, ErrInvalidRefreshToken
		}
		return "", "", 0, err
	}

	var user models.User
	if err := db.First(&user, "id = ?", token.UserID).Error; err != nil {
		return "", "", 0, ErrInvalidRefreshToken
	}

	accessToken, newRefreshToken, err := s.GenerateTokens(db, &user)
	if err != nil {
		return "", "", 0, err
	}

	db.Delete(&token)

	return accessToken, newRefreshToken, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

func (s *AuthServiceImpl) RevokeToken(db *gorm.DB, refreshToken string) error {
	tokenUUID, err := uuid.FromString(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	return db.Where("refresh_token = ?", tokenUUID).Delete(&models.Token{}).Error
}
