package repository

import (
	"errors"

	"github.com/soundcollective/collective-api/internal/database"
	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/utils"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// UpsertByExternalID creates the local profile row for an identity-provider
// subject, or refreshes name/email/avatar when the row already exists.
func (r *GormUserRepository) UpsertByExternalID(user *models.User) (*models.User, error) {
	var existing models.User
	err := r.db.Where("external_id = ?", user.ExternalID).First(&existing).Error

	switch {
	case err == nil:
		changed := false
		if user.Name != "" && user.Name != existing.Name {
			existing.Name = user.Name
			changed = true
		}
		if user.Email != "" && user.Email != existing.Email {
			existing.Email = user.Email
			changed = true
		}
		if user.AvatarURL != "" && user.AvatarURL != existing.AvatarURL {
			existing.AvatarURL = user.AvatarURL
			changed = true
		}
		if changed {
			if err := r.db.Save(&existing).Error; err != nil {
				return nil, err
			}
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.Create(user).Error; err != nil {
			return nil, err
		}
		return user, nil
	default:
		return nil, err
	}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users with pagination
func (r *GormUserRepository) List(params utils.PaginationParams) ([]models.User, int64, error) {
	var total int64
	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := r.db.Order("name ASC").
		Scopes(database.Paginate(params)).
		Find(&users).Error
	return users, total, err
}

// Count counts all users
func (r *GormUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountByIDs counts how many of the given user IDs exist
func (r *GormUserRepository) CountByIDs(ids []uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

// CreateNotification appends a notification row
func (r *GormUserRepository) CreateNotification(n *models.Notification) error {
	return r.db.Create(n).Error
}

// ListNotifications returns the user's notifications, newest first
func (r *GormUserRepository) ListNotifications(userID uint64, params utils.PaginationParams) ([]models.Notification, int64, error) {
	var total int64
	query := r.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&notifications).Error
	return notifications, total, err
}

// MarkNotificationRead marks one of the user's notifications as read
func (r *GormUserRepository) MarkNotificationRead(id, userID uint64) error {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllNotificationsRead marks all of the user's notifications as read
func (r *GormUserRepository) MarkAllNotificationsRead(userID uint64) error {
	return r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
