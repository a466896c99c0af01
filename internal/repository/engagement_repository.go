package repository

import (
	"errors"

	"github.com/soundcollective/collective-api/internal/models"
	"gorm.io/gorm"
)

// GormEngagementRepository is a GORM implementation of EngagementRepository
type GormEngagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new EngagementRepository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &GormEngagementRepository{db: db}
}

// ToggleLike flips the user's like for the target and returns the new state.
func (r *GormEngagementRepository) ToggleLike(userID uint64, target models.EngagementTarget) (bool, error) {
	var liked bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target.Type, target.ID).
			First(&existing).Error

		switch {
		case err == nil:
			liked = false
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			like := models.Like{UserID: userID, TargetType: target.Type, TargetID: target.ID}
			return tx.Create(&like).Error
		default:
			return err
		}
	})
	return liked, err
}

// UserLiked reports whether the user has liked the target
func (r *GormEngagementRepository) UserLiked(userID uint64, target models.EngagementTarget) (bool, error) {
	var count int64
	err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target.Type, target.ID).
		Count(&count).Error
	return count > 0, err
}

// CreateComment appends a comment
func (r *GormEngagementRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// ListComments returns the target's comments, newest first
func (r *GormEngagementRepository) ListComments(target models.EngagementTarget, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("User").
		Where("target_type = ? AND target_id = ?", target.Type, target.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

// CountComments counts the target's comments
func (r *GormEngagementRepository) CountComments(target models.EngagementTarget) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).
		Where("target_type = ? AND target_id = ?", target.Type, target.ID).
		Count(&count).Error
	return count, err
}

type targetCount struct {
	TargetID uint64
	Count    int64
}

// CountLikesByTargets returns like counts keyed by target id
func (r *GormEngagementRepository) CountLikesByTargets(kind models.TargetType, ids []uint64) (map[uint64]int64, error) {
	return r.countByTargets(&models.Like{}, kind, ids)
}

// CountCommentsByTargets returns comment counts keyed by target id
func (r *GormEngagementRepository) CountCommentsByTargets(kind models.TargetType, ids []uint64) (map[uint64]int64, error) {
	return r.countByTargets(&models.Comment{}, kind, ids)
}

func (r *GormEngagementRepository) countByTargets(model interface{}, kind models.TargetType, ids []uint64) (map[uint64]int64, error) {
	result := make(map[uint64]int64)
	if len(ids) == 0 {
		return result, nil
	}

	var counts []targetCount
	err := r.db.Model(model).
		Select("target_id, COUNT(*) as count").
		Where("target_type = ? AND target_id IN ?", kind, ids).
		Group("target_id").
		Find(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, tc := range counts {
		result[tc.TargetID] = tc.Count
	}
	return result, nil
}

// LikedByTargets reports which of the targets the user has liked
func (r *GormEngagementRepository) LikedByTargets(kind models.TargetType, ids []uint64, userID uint64) (map[uint64]bool, error) {
	result := make(map[uint64]bool)
	if len(ids) == 0 {
		return result, nil
	}

	var likedIDs []uint64
	err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, kind, ids).
		Pluck("target_id", &likedIDs).Error
	if err != nil {
		return nil, err
	}
	for _, id := range likedIDs {
		result[id] = true
	}
	return result, nil
}
