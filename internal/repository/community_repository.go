package repository

import (
	"errors"
	"time"

	"github.com/soundcollective/collective-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVoteUnchanged is returned when the voter already holds the requested option.
var ErrVoteUnchanged = errors.New("community repository: vote already on this option")

// GormCommunityRepository is a GORM implementation of CommunityRepository
type GormCommunityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &GormCommunityRepository{db: db}
}

// CreateEvent creates an event row
func (r *GormCommunityRepository) CreateEvent(event *models.Event) error {
	return r.db.Create(event).Error
}

// FindEventByID finds an event by ID with optional preloading
func (r *GormCommunityRepository) FindEventByID(id uint64, preload ...string) (*models.Event, error) {
	var event models.Event
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent saves changed event fields
func (r *GormCommunityRepository) UpdateEvent(event *models.Event) error {
	return r.db.Save(event).Error
}

// DeleteEvent removes the event and its dependents. There is no FK cascade
// for engagement rows, so cleanup is explicit and transactional.
func (r *GormCommunityRepository) DeleteEvent(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.RSVP{}).Error; err != nil {
			return err
		}
		if err := deleteEngagement(tx, models.TargetEvent, id); err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, id).Error
	})
}

// ListEventsBetween returns events whose start falls in [from, to)
func (r *GormCommunityRepository) ListEventsBetween(from, to time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Preload("Creator").
		Where("starts_at >= ? AND starts_at < ?", from, to).
		Order("starts_at ASC").
		Find(&events).Error
	return events, err
}

// ListUpcomingEvents returns the next events starting after the given time
func (r *GormCommunityRepository) ListUpcomingEvents(after time.Time, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Preload("Creator").
		Where("starts_at > ?", after).
		Order("starts_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// ListRecentEvents returns the most recently created events
func (r *GormCommunityRepository) ListRecentEvents(limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Preload("Creator").
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// UpsertRSVP inserts the (event, user) response or overwrites its status.
func (r *GormCommunityRepository) UpsertRSVP(rsvp *models.RSVP) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(rsvp).Error
}

// RSVPsForUser returns the user's RSVP status per event
func (r *GormCommunityRepository) RSVPsForUser(eventIDs []uint64, userID uint64) (map[uint64]models.RSVPStatus, error) {
	result := make(map[uint64]models.RSVPStatus)
	if len(eventIDs) == 0 {
		return result, nil
	}

	var rsvps []models.RSVP
	if err := r.db.Where("event_id IN ? AND user_id = ?", eventIDs, userID).Find(&rsvps).Error; err != nil {
		return nil, err
	}
	for _, rsvp := range rsvps {
		result[rsvp.EventID] = rsvp.Status
	}
	return result, nil
}

// CreatePoll creates a poll with its options in one transaction
func (r *GormCommunityRepository) CreatePoll(poll *models.Poll) error {
	return r.db.Create(poll).Error
}

// FindPollByID finds a poll with its options
func (r *GormCommunityRepository) FindPollByID(id uint64) (*models.Poll, error) {
	var poll models.Poll
	if err := r.db.Preload("Options").Preload("Creator").First(&poll, id).Error; err != nil {
		return nil, err
	}
	return &poll, nil
}

// DeletePoll removes the poll and its dependents.
func (r *GormCommunityRepository) DeletePoll(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", id).Delete(&models.PollVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", id).Delete(&models.PollOption{}).Error; err != nil {
			return err
		}
		if err := deleteEngagement(tx, models.TargetPoll, id); err != nil {
			return err
		}
		return tx.Delete(&models.Poll{}, id).Error
	})
}

// CountPolls counts all polls
func (r *GormCommunityRepository) CountPolls() (int64, error) {
	var count int64
	err := r.db.Model(&models.Poll{}).Count(&count).Error
	return count, err
}

// ListRecentPolls returns the most recently created polls with options
func (r *GormCommunityRepository) ListRecentPolls(limit int) ([]models.Poll, error) {
	var polls []models.Poll
	err := r.db.Preload("Options").Preload("Creator").
		Order("created_at DESC").
		Limit(limit).
		Find(&polls).Error
	return polls, err
}

// MoveVote records the voter's single active choice for the poll. A first
// vote inserts the row and bumps the option count; a switch moves the row and
// shifts both cached counts. Everything happens in one transaction so the sum
// of option counts never changes across a switch.
func (r *GormCommunityRepository) MoveVote(pollID, optionID, userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PollVote
		err := tx.Where("poll_id = ? AND user_id = ?", pollID, userID).First(&existing).Error

		switch {
		case err == nil:
			if existing.OptionID == optionID {
				return ErrVoteUnchanged
			}
			if err := tx.Model(&models.PollOption{}).
				Where("id = ? AND votes > 0", existing.OptionID).
				Update("votes", gorm.Expr("votes - 1")).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.PollVote{}).
				Where("poll_id = ? AND user_id = ?", pollID, userID).
				Update("option_id", optionID).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.PollVote{PollID: pollID, UserID: userID, OptionID: optionID}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return tx.Model(&models.PollOption{}).
			Where("id = ?", optionID).
			Update("votes", gorm.Expr("votes + 1")).Error
	})
}

// VotesForUser returns the user's chosen option per poll
func (r *GormCommunityRepository) VotesForUser(pollIDs []uint64, userID uint64) (map[uint64]uint64, error) {
	result := make(map[uint64]uint64)
	if len(pollIDs) == 0 {
		return result, nil
	}

	var votes []models.PollVote
	if err := r.db.Where("poll_id IN ? AND user_id = ?", pollIDs, userID).Find(&votes).Error; err != nil {
		return nil, err
	}
	for _, vote := range votes {
		result[vote.PollID] = vote.OptionID
	}
	return result, nil
}

// deleteEngagement removes likes and comments attached to a target. Shared by
// the delete procedures of every engagement-bearing entity.
func deleteEngagement(tx *gorm.DB, kind models.TargetType, id uint64) error {
	if err := tx.Where("target_type = ? AND target_id = ?", kind, id).Delete(&models.Like{}).Error; err != nil {
		return err
	}
	return tx.Where("target_type = ? AND target_id = ?", kind, id).Delete(&models.Comment{}).Error
}
