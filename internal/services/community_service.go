package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/soundcollective/collective-api/internal/dto"
	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrPollNotFound        = errors.New("poll not found")
	ErrPollExpired         = errors.New("poll has expired")
	ErrInvalidPollOption   = errors.New("option does not belong to this poll")
	ErrPollOptionsRequired = errors.New("a poll needs at least two options")
	ErrNotCreator          = errors.New("only the creator can modify this item")
	ErrInvalidRSVPStatus   = errors.New("invalid rsvp status")
	ErrEventTitleRequired  = errors.New("event title is required")
	ErrPollTitleRequired   = errors.New("poll title is required")
)

// CommunityService handles events, RSVPs, polls, and the merged feed.
type CommunityService struct {
	communityRepo  repository.CommunityRepository
	engagementRepo repository.EngagementRepository
	userRepo       repository.UserRepository
	calendar       *CalendarService
}

// NewCommunityService creates a new CommunityService.
func NewCommunityService(communityRepo repository.CommunityRepository, engagementRepo repository.EngagementRepository, userRepo repository.UserRepository, calendar *CalendarService) *CommunityService {
	return &CommunityService{
		communityRepo:  communityRepo,
		engagementRepo: engagementRepo,
		userRepo:       userRepo,
		calendar:       calendar,
	}
}

// CreateEventInput represents input for creating an event.
type CreateEventInput struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      *time.Time
	AllDay      bool
	CreatorID   uint64

	// When set and the calendar client is configured, the event is mirrored
	// to the caller's external calendar.
	CalendarAccessToken  string
	CalendarRefreshToken string
}

// CreateEvent creates a local event and best-effort mirrors it to the
// external calendar. A failed mirror never fails the local create; the row is
// simply left without an external id.
func (s *CommunityService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrEventTitleRequired
	}
	if input.StartsAt.IsZero() {
		return nil, errors.New("event start time is required")
	}

	event := &models.Event{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		AllDay:      input.AllDay,
		CreatorID:   input.CreatorID,
	}

	if s.calendar != nil && input.CalendarAccessToken != "" {
		externalID, err := s.calendar.CreateEvent(ctx, input.CalendarAccessToken, input.CalendarRefreshToken, CalendarEvent{
			Title:       input.Title,
			Description: input.Description,
			Location:    input.Location,
			StartsAt:    input.StartsAt,
			EndsAt:      input.EndsAt,
			AllDay:      input.AllDay,
		})
		if err != nil {
			log.Printf("calendar mirror for event %q failed: %v", input.Title, err)
		} else {
			event.ExternalID = &externalID
		}
	}

	if err := s.communityRepo.CreateEvent(event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// UpdateEventInput represents a partial event update.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Location    *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	AllDay      *bool
}

// UpdateEvent applies a partial update. Only the creator may update.
func (s *CommunityService) UpdateEvent(eventID, actorID uint64, input UpdateEventInput) (*models.Event, error) {
	event, err := s.findEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != actorID {
		return nil, ErrNotCreator
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrEventTitleRequired
		}
		event.Title = *input.Title
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.Location != nil {
		event.Location = *input.Location
	}
	if input.StartsAt != nil {
		event.StartsAt = *input.StartsAt
	}
	if input.EndsAt != nil {
		event.EndsAt = input.EndsAt
	}
	if input.AllDay != nil {
		event.AllDay = *input.AllDay
	}

	if err := s.communityRepo.UpdateEvent(event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event with its RSVPs and engagement. Creator only.
func (s *CommunityService) DeleteEvent(eventID, actorID uint64) error {
	event, err := s.findEvent(eventID)
	if err != nil {
		return err
	}
	if event.CreatorID != actorID {
		return ErrNotCreator
	}
	if err := s.communityRepo.DeleteEvent(eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// EventsByMonth returns the local events of a calendar month.
func (s *CommunityService) EventsByMonth(year, month int) ([]models.Event, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	events, err := s.communityRepo.ListEventsBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// MergeExternalEvents filters out external calendar events that are mirrors
// of local rows, matching by stored external id.
func MergeExternalEvents(local []models.Event, external []CalendarEvent) []CalendarEvent {
	mirrored := make(map[string]bool)
	for _, ev := range local {
		if ev.ExternalID != nil {
			mirrored[*ev.ExternalID] = true
		}
	}
	return lo.Filter(external, func(ev CalendarEvent, _ int) bool {
		return !mirrored[ev.ID]
	})
}

// UpcomingEvents returns the next events starting after now.
func (s *CommunityService) UpcomingEvents(limit int) ([]models.Event, error) {
	return s.communityRepo.ListUpcomingEvents(time.Now(), limit)
}

// RSVP records or overwrites the user's response to an event.
func (s *CommunityService) RSVP(eventID, userID uint64, status models.RSVPStatus) (*models.RSVP, error) {
	switch status {
	case models.RSVPAttending, models.RSVPMaybe, models.RSVPDeclined:
	default:
		return nil, ErrInvalidRSVPStatus
	}

	event, err := s.findEvent(eventID)
	if err != nil {
		return nil, err
	}

	rsvp := &models.RSVP{EventID: eventID, UserID: userID, Status: status}
	if err := s.communityRepo.UpsertRSVP(rsvp); err != nil {
		return nil, fmt.Errorf("failed to save rsvp: %w", err)
	}

	if event.CreatorID != userID && status == models.RSVPAttending {
		s.notifyUser(event.CreatorID, models.NotificationRSVP,
			fmt.Sprintf("Someone is attending %q", event.Title))
	}
	return rsvp, nil
}

// CreatePollInput represents input for creating a poll.
type CreatePollInput struct {
	Title     string
	Content   string
	EndsAt    *time.Time
	Options   []string
	CreatorID uint64
}

// CreatePoll creates a poll with its options.
func (s *CommunityService) CreatePoll(input CreatePollInput) (*models.Poll, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrPollTitleRequired
	}
	options := lo.Filter(input.Options, func(o string, _ int) bool {
		return strings.TrimSpace(o) != ""
	})
	if len(options) < 2 {
		return nil, ErrPollOptionsRequired
	}

	poll := &models.Poll{
		Title:     input.Title,
		Content:   input.Content,
		EndsAt:    input.EndsAt,
		CreatorID: input.CreatorID,
		Options: lo.Map(options, func(text string, _ int) models.PollOption {
			return models.PollOption{Text: text}
		}),
	}
	if err := s.communityRepo.CreatePoll(poll); err != nil {
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}
	return poll, nil
}

// Vote records the voter's single active choice. A switch moves the vote and
// both cached counts; voting the held option again is a no-op. A poll with a
// nil expiry never expires.
func (s *CommunityService) Vote(pollID, optionID, userID uint64) (*models.Poll, error) {
	poll, err := s.findPoll(pollID)
	if err != nil {
		return nil, err
	}

	if poll.EndsAt != nil && time.Now().After(*poll.EndsAt) {
		return nil, ErrPollExpired
	}

	validOption := lo.ContainsBy(poll.Options, func(o models.PollOption) bool {
		return o.ID == optionID
	})
	if !validOption {
		return nil, ErrInvalidPollOption
	}

	if err := s.communityRepo.MoveVote(pollID, optionID, userID); err != nil {
		if !errors.Is(err, repository.ErrVoteUnchanged) {
			return nil, fmt.Errorf("failed to record vote: %w", err)
		}
	}

	return s.findPoll(pollID)
}

// DeletePoll removes a poll with its options, votes, and engagement. Creator only.
func (s *CommunityService) DeletePoll(pollID, actorID uint64) error {
	poll, err := s.findPoll(pollID)
	if err != nil {
		return err
	}
	if poll.CreatorID != actorID {
		return ErrNotCreator
	}
	if err := s.communityRepo.DeletePoll(pollID); err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	return nil
}

// CountPolls counts all polls.
func (s *CommunityService) CountPolls() (int64, error) {
	return s.communityRepo.CountPolls()
}

// Feed merges events and polls into one reverse-chronological list annotated
// with like/comment counts and the viewer's own like/RSVP/vote state.
func (s *CommunityService) Feed(viewerID uint64, limit int) ([]dto.FeedItem, error) {
	events, err := s.communityRepo.ListRecentEvents(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	polls, err := s.communityRepo.ListRecentPolls(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load polls: %w", err)
	}

	eventIDs := lo.Map(events, func(e models.Event, _ int) uint64 { return e.ID })
	pollIDs := lo.Map(polls, func(p models.Poll, _ int) uint64 { return p.ID })

	eventLikes, err := s.engagementRepo.CountLikesByTargets(models.TargetEvent, eventIDs)
	if err != nil {
		return nil, err
	}
	eventComments, err := s.engagementRepo.CountCommentsByTargets(models.TargetEvent, eventIDs)
	if err != nil {
		return nil, err
	}
	eventLiked, err := s.engagementRepo.LikedByTargets(models.TargetEvent, eventIDs, viewerID)
	if err != nil {
		return nil, err
	}
	rsvps, err := s.communityRepo.RSVPsForUser(eventIDs, viewerID)
	if err != nil {
		return nil, err
	}

	pollLikes, err := s.engagementRepo.CountLikesByTargets(models.TargetPoll, pollIDs)
	if err != nil {
		return nil, err
	}
	pollComments, err := s.engagementRepo.CountCommentsByTargets(models.TargetPoll, pollIDs)
	if err != nil {
		return nil, err
	}
	pollLiked, err := s.engagementRepo.LikedByTargets(models.TargetPoll, pollIDs, viewerID)
	if err != nil {
		return nil, err
	}
	votes, err := s.communityRepo.VotesForUser(pollIDs, viewerID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.FeedItem, 0, len(events)+len(polls))
	now := time.Now()

	for _, event := range events {
		item := dto.FeedItem{
			Type:         dto.FeedItemEvent,
			ID:           event.ID,
			Title:        event.Title,
			Content:      event.Description,
			CreatedAt:    event.CreatedAt,
			LikeCount:    eventLikes[event.ID],
			CommentCount: eventComments[event.ID],
			ViewerLiked:  eventLiked[event.ID],
			Event: &dto.FeedEventDetails{
				StartsAt: event.StartsAt,
				EndsAt:   event.EndsAt,
				AllDay:   event.AllDay,
				Location: event.Location,
			},
		}
		if event.Creator.ID != 0 {
			creator := dto.ToUserDTO(event.Creator)
			item.Creator = &creator
		}
		if status, ok := rsvps[event.ID]; ok {
			s := status
			item.Event.ViewerRSVP = &s
		}
		items = append(items, item)
	}

	for _, poll := range polls {
		total := lo.SumBy(poll.Options, func(o models.PollOption) int { return o.Votes })

		details := &dto.FeedPollDetails{
			EndsAt:     poll.EndsAt,
			Expired:    poll.EndsAt != nil && now.After(*poll.EndsAt),
			TotalVotes: total,
			Options: lo.Map(poll.Options, func(o models.PollOption, _ int) dto.FeedPollOption {
				percent := 0.0
				if total > 0 {
					percent = float64(o.Votes) / float64(total) * 100
				}
				return dto.FeedPollOption{ID: o.ID, Text: o.Text, Votes: o.Votes, Percent: percent}
			}),
		}
		if optionID, ok := votes[poll.ID]; ok {
			id := optionID
			details.ViewerOptionID = &id
		}

		item := dto.FeedItem{
			Type:         dto.FeedItemPoll,
			ID:           poll.ID,
			Title:        poll.Title,
			Content:      poll.Content,
			CreatedAt:    poll.CreatedAt,
			LikeCount:    pollLikes[poll.ID],
			CommentCount: pollComments[poll.ID],
			ViewerLiked:  pollLiked[poll.ID],
			Poll:         details,
		}
		if poll.Creator.ID != 0 {
			creator := dto.ToUserDTO(poll.Creator)
			item.Creator = &creator
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *CommunityService) findEvent(id uint64) (*models.Event, error) {
	event, err := s.communityRepo.FindEventByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return event, nil
}

func (s *CommunityService) findPoll(id uint64) (*models.Poll, error) {
	poll, err := s.communityRepo.FindPollByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to find poll: %w", err)
	}
	return poll, nil
}

func (s *CommunityService) notifyUser(userID uint64, typ models.NotificationType, message string) {
	n := &models.Notification{UserID: userID, Type: typ, Message: message}
	if err := s.userRepo.CreateNotification(n); err != nil {
		log.Printf("failed to create notification for user %d: %v", userID, err)
	}
}
