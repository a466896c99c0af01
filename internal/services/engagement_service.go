package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/repository"
	"gorm.io/gorm"
)

var ErrTargetNotFound = errors.New("engagement target not found")

// EngagementService handles likes and comments across events, polls, and
// spotlights.
type EngagementService struct {
	engagementRepo repository.EngagementRepository
	communityRepo  repository.CommunityRepository
	spotlightRepo  repository.SpotlightRepository
}

// NewEngagementService creates a new EngagementService.
func NewEngagementService(engagementRepo repository.EngagementRepository, communityRepo repository.CommunityRepository, spotlightRepo repository.SpotlightRepository) *EngagementService {
	return &EngagementService{
		engagementRepo: engagementRepo,
		communityRepo:  communityRepo,
		spotlightRepo:  spotlightRepo,
	}
}

// ToggleLike flips the user's like for the target and returns the new state.
func (s *EngagementService) ToggleLike(userID uint64, target models.EngagementTarget) (bool, error) {
	if err := s.verifyTarget(target); err != nil {
		return false, err
	}
	liked, err := s.engagementRepo.ToggleLike(userID, target)
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, nil
}

// UserLiked reports whether the user has liked the target.
func (s *EngagementService) UserLiked(userID uint64, target models.EngagementTarget) (bool, error) {
	return s.engagementRepo.UserLiked(userID, target)
}

// CreateComment appends a comment to the target.
func (s *EngagementService) CreateComment(userID uint64, target models.EngagementTarget, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("comment content is required")
	}
	if err := s.verifyTarget(target); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:     userID,
		TargetType: target.Type,
		TargetID:   target.ID,
		Content:    content,
	}
	if err := s.engagementRepo.CreateComment(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// ListComments returns the target's comments, newest first.
func (s *EngagementService) ListComments(target models.EngagementTarget, limit int) ([]models.Comment, error) {
	return s.engagementRepo.ListComments(target, limit)
}

// CountComments counts the target's comments.
func (s *EngagementService) CountComments(target models.EngagementTarget) (int64, error) {
	return s.engagementRepo.CountComments(target)
}

// verifyTarget checks the referenced row exists before attaching engagement.
func (s *EngagementService) verifyTarget(target models.EngagementTarget) error {
	var err error
	switch target.Type {
	case models.TargetEvent:
		_, err = s.communityRepo.FindEventByID(target.ID)
	case models.TargetPoll:
		_, err = s.communityRepo.FindPollByID(target.ID)
	case models.TargetSpotlight:
		_, err = s.spotlightRepo.FindByID(target.ID)
	default:
		return models.ErrInvalidTargetType
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTargetNotFound
		}
		return fmt.Errorf("failed to verify target: %w", err)
	}
	return nil
}
