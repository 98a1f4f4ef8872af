package services

import (
	"errors"
	"strings"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// ProfileUpdate carries a partial profile mutation; nil fields are untouched.
type ProfileUpdate struct {
	Username *string
	Email    *string
}

type UserService interface {
	GetUserProfile(db *gorm.DB, id uuid.UUID) (*models.User, error)
	UpdateProfile(db *gorm.DB, id uuid.UUID, update ProfileUpdate) (*models.User, error)
}

type UserServiceImpl struct{}

func NewUserService() *UserServiceImpl {
	return &UserServiceImpl{}
}

func (s *UserServiceImpl) GetUserProfile(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, id uuid.UUID, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetUserProfile(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		var existing models.User
		err := db.Where("username = ? AND id <> ?", username, id).First(&existing).Error
		if err == nil {
			return nil, ErrDuplicateUsername
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		updates["username"] = username
	}
	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		var existing models.User
		err := db.Where("email = ? AND id <> ?", email, id).First(&existing).Error
		if err == nil {
			return nil, ErrDuplicateEmail
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		updates["email"] = email
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := db.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return user, nil
}
