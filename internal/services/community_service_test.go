package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/soundcollective/collective-api/internal/database"
	"github.com/soundcollective/collective-api/internal/dto"
	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type communityTestEnv struct {
	db      *gorm.DB
	service *CommunityService
}

func setupCommunityTestEnv(t *testing.T) communityTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.RSVP{},
		&models.Poll{},
		&models.PollOption{},
		&models.PollVote{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	communityRepo := repository.NewCommunityRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	userRepo := repository.NewUserRepository(db)
	service := NewCommunityService(communityRepo, engagementRepo, userRepo, nil)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return communityTestEnv{db: db, service: service}
}

func createCommunityUser(t *testing.T, db *gorm.DB, externalID, name string) *models.User {
	t.Helper()
	user := &models.User{ExternalID: externalID, Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCommunityService_CreatePoll_FiltersBlankOptions(t *testing.T) {
	env := setupCommunityTestEnv(t)
	user := createCommunityUser(t, env.db, "ext-1", "alice")

	_, err := env.service.CreatePoll(CreatePollInput{
		Title:     "Next venue?",
		Options:   []string{"The Basement", "   ", ""},
		CreatorID: user.ID,
	})
	require.ErrorIs(t, err, ErrPollOptionsRequired)

	poll, err := env.service.CreatePoll(CreatePollInput{
		Title:     "Next venue?",
		Options:   []string{"The Basement", "Rooftop Bar", "  "},
		CreatorID: user.ID,
	})
	require.NoError(t, err)
	require.Len(t, poll.Options, 2)
}

func TestCommunityService_Vote_MovePreservesTotals(t *testing.T) {
	env := setupCommunityTestEnv(t)
	creator := createCommunityUser(t, env.db, "ext-1", "alice")
	voter := createCommunityUser(t, env.db, "ext-2", "bob")

	poll, err := env.service.CreatePoll(CreatePollInput{
		Title:     "Set length?",
		Options:   []string{"30 min", "45 min"},
		CreatorID: creator.ID,
	})
	require.NoError(t, err)
	first, second := poll.Options[0], poll.Options[1]

	poll, err = env.service.Vote(poll.ID, first.ID, voter.ID)
	require.NoError(t, err)
	require.Equal(t, 1, optionVotes(poll, first.ID))
	require.Equal(t, 0, optionVotes(poll, second.ID))

	// Switching moves the vote; the total stays at one.
	poll, err = env.service.Vote(poll.ID, second.ID, voter.ID)
	require.NoError(t, err)
	require.Equal(t, 0, optionVotes(poll, first.ID))
	require.Equal(t, 1, optionVotes(poll, second.ID))

	// Voting the held option again changes nothing.
	poll, err = env.service.Vote(poll.ID, second.ID, voter.ID)
	require.NoError(t, err)
	require.Equal(t, 0, optionVotes(poll, first.ID))
	require.Equal(t, 1, optionVotes(poll, second.ID))

	var voteRows int64
	env.db.Model(&models.PollVote{}).Where("poll_id = ?", poll.ID).Count(&voteRows)
	require.Equal(t, int64(1), voteRows)
}

func TestCommunityService_Vote_ExpiredPollRejected(t *testing.T) {
	env := setupCommunityTestEnv(t)
	user := createCommunityUser(t, env.db, "ext-1", "alice")

	past := time.Now().Add(-time.Hour)
	poll, err := env.service.CreatePoll(CreatePollInput{
		Title:     "Old poll",
		EndsAt:    &past,
		Options:   []string{"A", "B"},
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	_, err = env.service.Vote(poll.ID, poll.Options[0].ID, user.ID)
	require.ErrorIs(t, err, ErrPollExpired)
}

func TestCommunityService_Vote_NilExpiryNeverExpires(t *testing.T) {
	env := setupCommunityTestEnv(t)
	user := createCommunityUser(t, env.db, "ext-1", "alice")

	poll, err := env.service.CreatePoll(CreatePollInput{
		Title:     "Evergreen poll",
		Options:   []string{"A", "B"},
		CreatorID: user.ID,
	})
	require.NoError(t, err)
	require.Nil(t, poll.EndsAt)

	_, err = env.service.Vote(poll.ID, poll.Options[0].ID, user.ID)
	require.NoError(t, err)
}

func TestCommunityService_Vote_ForeignOptionRejected(t *testing.T) {
	env := setupCommunityTestEnv(t)
	user := createCommunityUser(t, env.db, "ext-1", "alice")

	pollA, err := env.service.CreatePoll(CreatePollInput{
		Title: "Poll A", Options: []string{"A1", "A2"}, CreatorID: user.ID,
	})
	require.NoError(t, err)
	pollB, err := env.service.CreatePoll(CreatePollInput{
		Title: "Poll B", Options: []string{"B1", "B2"}, CreatorID: user.ID,
	})
	require.NoError(t, err)

	_, err = env.service.Vote(pollA.ID, pollB.Options[0].ID, user.ID)
	require.ErrorIs(t, err, ErrInvalidPollOption)
}

func TestCommunityService_RSVP_UpsertsSingleRow(t *testing.T) {
	env := setupCommunityTestEnv(t)
	creator := createCommunityUser(t, env.db, "ext-1", "alice")
	guest := createCommunityUser(t, env.db, "ext-2", "bob")

	event, err := env.service.CreateEvent(context.Background(), CreateEventInput{
		Title:     "Open mic",
		StartsAt:  time.Now().Add(24 * time.Hour),
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	_, err = env.service.RSVP(event.ID, guest.ID, models.RSVPMaybe)
	require.NoError(t, err)

	rsvp, err := env.service.RSVP(event.ID, guest.ID, models.RSVPAttending)
	require.NoError(t, err)
	require.Equal(t, models.RSVPAttending, rsvp.Status)

	var rows int64
	env.db.Model(&models.RSVP{}).Where("event_id = ? AND user_id = ?", event.ID, guest.ID).Count(&rows)
	require.Equal(t, int64(1), rows)

	var stored models.RSVP
	require.NoError(t, env.db.Where("event_id = ? AND user_id = ?", event.ID, guest.ID).First(&stored).Error)
	require.Equal(t, models.RSVPAttending, stored.Status)

	// The creator was notified about the attendance.
	var notifications int64
	env.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", creator.ID, models.NotificationRSVP).
		Count(&notifications)
	require.Equal(t, int64(1), notifications)
}

func TestCommunityService_RSVP_InvalidStatus(t *testing.T) {
	env := setupCommunityTestEnv(t)
	user := createCommunityUser(t, env.db, "ext-1", "alice")

	event, err := env.service.CreateEvent(context.Background(), CreateEventInput{
		Title:     "Open mic",
		StartsAt:  time.Now().Add(24 * time.Hour),
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	_, err = env.service.RSVP(event.ID, user.ID, models.RSVPStatus("interested"))
	require.ErrorIs(t, err, ErrInvalidRSVPStatus)
}

func TestCommunityService_EventsByMonth_WindowIsExclusive(t *testing.T) {
	env := setupCommunityTestEnv(t)
	user := createCommunityUser(t, env.db, "ext-1", "alice")

	inMonth := time.Date(2026, time.March, 15, 20, 0, 0, 0, time.UTC)
	lastSecond := time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC)
	nextMonth := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	for _, startsAt := range []time.Time{inMonth, lastSecond, nextMonth} {
		_, err := env.service.CreateEvent(context.Background(), CreateEventInput{
			Title:     "Show",
			StartsAt:  startsAt,
			CreatorID: user.ID,
		})
		require.NoError(t, err)
	}

	events, err := env.service.EventsByMonth(2026, 3)
	require.NoError(t, err)
	require.Len(t, events, 2)
}

func TestCommunityService_UpdateEvent_CreatorOnly(t *testing.T) {
	env := setupCommunityTestEnv(t)
	creator := createCommunityUser(t, env.db, "ext-1", "alice")
	other := createCommunityUser(t, env.db, "ext-2", "bob")

	event, err := env.service.CreateEvent(context.Background(), CreateEventInput{
		Title:     "Open mic",
		StartsAt:  time.Now().Add(24 * time.Hour),
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	title := "Stolen show"
	_, err = env.service.UpdateEvent(event.ID, other.ID, UpdateEventInput{Title: &title})
	require.ErrorIs(t, err, ErrNotCreator)

	err = env.service.DeleteEvent(event.ID, other.ID)
	require.ErrorIs(t, err, ErrNotCreator)
}

func TestCommunityService_DeleteEvent_RemovesEngagement(t *testing.T) {
	env := setupCommunityTestEnv(t)
	creator := createCommunityUser(t, env.db, "ext-1", "alice")
	guest := createCommunityUser(t, env.db, "ext-2", "bob")

	event, err := env.service.CreateEvent(context.Background(), CreateEventInput{
		Title:     "Open mic",
		StartsAt:  time.Now().Add(24 * time.Hour),
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	_, err = env.service.RSVP(event.ID, guest.ID, models.RSVPAttending)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&models.Like{
		UserID: guest.ID, TargetType: models.TargetEvent, TargetID: event.ID,
	}).Error)
	require.NoError(t, env.db.Create(&models.Comment{
		UserID: guest.ID, TargetType: models.TargetEvent, TargetID: event.ID, Content: "count me in",
	}).Error)

	require.NoError(t, env.service.DeleteEvent(event.ID, creator.ID))

	var count int64
	env.db.Model(&models.RSVP{}).Where("event_id = ?", event.ID).Count(&count)
	require.Zero(t, count)
	env.db.Model(&models.Like{}).Where("target_type = ? AND target_id = ?", models.TargetEvent, event.ID).Count(&count)
	require.Zero(t, count)
	env.db.Model(&models.Comment{}).Where("target_type = ? AND target_id = ?", models.TargetEvent, event.ID).Count(&count)
	require.Zero(t, count)
}

func TestCommunityService_Feed_OrderedAndAnnotated(t *testing.T) {
	env := setupCommunityTestEnv(t)
	creator := createCommunityUser(t, env.db, "ext-1", "alice")
	viewer := createCommunityUser(t, env.db, "ext-2", "bob")

	event, err := env.service.CreateEvent(context.Background(), CreateEventInput{
		Title:     "Warehouse show",
		StartsAt:  time.Now().Add(72 * time.Hour),
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	poll, err := env.service.CreatePoll(CreatePollInput{
		Title:     "Ticket price?",
		Options:   []string{"10", "15"},
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	// Make the poll the newer item.
	require.NoError(t, env.db.Model(&models.Event{}).Where("id = ?", event.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	_, err = env.service.RSVP(event.ID, viewer.ID, models.RSVPAttending)
	require.NoError(t, err)
	_, err = env.service.Vote(poll.ID, poll.Options[1].ID, viewer.ID)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&models.Like{
		UserID: viewer.ID, TargetType: models.TargetPoll, TargetID: poll.ID,
	}).Error)

	items, err := env.service.Feed(viewer.ID, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, dto.FeedItemPoll, items[0].Type)
	require.Equal(t, poll.ID, items[0].ID)
	require.Equal(t, dto.FeedItemEvent, items[1].Type)
	require.Equal(t, event.ID, items[1].ID)

	// Viewer state is attached per item.
	require.True(t, items[0].ViewerLiked)
	require.NotNil(t, items[0].Poll)
	require.NotNil(t, items[0].Poll.ViewerOptionID)
	require.Equal(t, poll.Options[1].ID, *items[0].Poll.ViewerOptionID)
	require.Equal(t, int64(1), items[0].LikeCount)

	require.False(t, items[1].ViewerLiked)
	require.NotNil(t, items[1].Event)
	require.NotNil(t, items[1].Event.ViewerRSVP)
	require.Equal(t, models.RSVPAttending, *items[1].Event.ViewerRSVP)
}

func TestCommunityService_Feed_HonorsLimit(t *testing.T) {
	env := setupCommunityTestEnv(t)
	user := createCommunityUser(t, env.db, "ext-1", "alice")

	for i := 0; i < 5; i++ {
		_, err := env.service.CreateEvent(context.Background(), CreateEventInput{
			Title:     "Show",
			StartsAt:  time.Now().Add(time.Duration(i+1) * time.Hour),
			CreatorID: user.ID,
		})
		require.NoError(t, err)
	}

	items, err := env.service.Feed(user.ID, 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
}

func TestMergeExternalEvents_SuppressesMirroredCopies(t *testing.T) {
	mirrorID := "google-abc"
	local := []models.Event{
		{ID: 1, Title: "Mirrored", ExternalID: &mirrorID},
		{ID: 2, Title: "Local only"},
	}
	external := []CalendarEvent{
		{ID: "google-abc", Title: "Mirrored"},
		{ID: "google-xyz", Title: "External only"},
	}

	merged := MergeExternalEvents(local, external)
	require.Len(t, merged, 1)
	require.Equal(t, "google-xyz", merged[0].ID)
}

func optionVotes(poll *models.Poll, optionID uint64) int {
	for _, option := range poll.Options {
		if option.ID == optionID {
			return option.Votes
		}
	}
	return -1
}
