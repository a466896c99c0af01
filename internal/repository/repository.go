package repository

import (
	"time"

	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/utils"
)

// ProjectRepository defines data access for projects and everything they own:
// tasks, resources, activity log, team members, and project chat. Multi-row
// mutations (cascade delete, child-set replace, aggregate recompute) run in a
// single transaction.
type ProjectRepository interface {
	// CreateWithChildren creates a project together with its initial team
	// members, tasks, and resources in one transaction.
	CreateWithChildren(project *models.Project, members []models.ProjectMember, tasks []models.Task, resources []models.Resource) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// ListForUser lists projects the user is a member of, with team, tasks,
	// and resources preloaded
	ListForUser(userID uint64) ([]models.Project, error)

	// UpdateWithChildren persists changed project fields and, for each
	// non-nil child slice, swaps the entire task or resource set; the
	// aggregate recompute lands in the same transaction
	UpdateWithChildren(project *models.Project, tasks *[]models.Task, resources *[]models.Resource) error

	// Delete removes the project and all owned rows in one transaction
	Delete(id uint64) error

	// Task operations; each recomputes the parent project's aggregates
	CreateTask(task *models.Task) error
	FindTaskByID(id uint64, preload ...string) (*models.Task, error)
	UpdateTask(task *models.Task) error
	DeleteTask(task *models.Task) error
	SetTaskAssignees(taskID uint64, userIDs []uint64) error

	// Resource operations
	CreateResource(resource *models.Resource) error
	FindResourceByID(id uint64) (*models.Resource, error)
	DeleteResource(resource *models.Resource) error
	ListResources() ([]models.Resource, error)

	// Activity log (append-only)
	LogActivity(activity *models.ProjectActivity) error
	ListActivities(projectID uint64, params utils.PaginationParams) ([]models.ProjectActivity, int64, error)

	// Team membership
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)
	AddMember(member *models.ProjectMember) error
	UpdateMemberRole(projectID, userID uint64, role models.ProjectRole) error
	RemoveMember(projectID, userID uint64) error
	ListMembers(projectID uint64) ([]models.ProjectMember, error)
	ListMembersByRole(projectID uint64, role models.ProjectRole) ([]models.ProjectMember, error)
	CountAdmins(projectID uint64) (int64, error)

	// Project chat
	CreateChatMessage(msg *models.ChatMessage) error
	ListChatMessages(projectID uint64, params utils.PaginationParams) ([]models.ChatMessage, int64, error)
}

// CommunityRepository defines data access for the community surface: events,
// RSVPs, and polls with their votes.
type CommunityRepository interface {
	CreateEvent(event *models.Event) error
	FindEventByID(id uint64, preload ...string) (*models.Event, error)
	UpdateEvent(event *models.Event) error

	// DeleteEvent removes the event and its RSVPs, likes, and comments
	DeleteEvent(id uint64) error

	// ListEventsBetween returns events whose start falls in [from, to)
	ListEventsBetween(from, to time.Time) ([]models.Event, error)
	ListUpcomingEvents(after time.Time, limit int) ([]models.Event, error)
	ListRecentEvents(limit int) ([]models.Event, error)

	// UpsertRSVP inserts or overwrites the (event, user) response
	UpsertRSVP(rsvp *models.RSVP) error
	RSVPsForUser(eventIDs []uint64, userID uint64) (map[uint64]models.RSVPStatus, error)

	CreatePoll(poll *models.Poll) error
	FindPollByID(id uint64) (*models.Poll, error)

	// DeletePoll removes the poll and its options, votes, likes, and comments
	DeletePoll(id uint64) error
	CountPolls() (int64, error)
	ListRecentPolls(limit int) ([]models.Poll, error)

	// MoveVote records the voter's single active choice, shifting the cached
	// option counts in the same transaction when the voter switches
	MoveVote(pollID, optionID, userID uint64) error
	VotesForUser(pollIDs []uint64, userID uint64) (map[uint64]uint64, error)
}

// EngagementRepository defines data access for likes and comments across
// target kinds.
type EngagementRepository interface {
	// ToggleLike flips the user's like for the target; returns the new state
	ToggleLike(userID uint64, target models.EngagementTarget) (bool, error)
	UserLiked(userID uint64, target models.EngagementTarget) (bool, error)

	CreateComment(comment *models.Comment) error
	ListComments(target models.EngagementTarget, limit int) ([]models.Comment, error)
	CountComments(target models.EngagementTarget) (int64, error)

	// Batched lookups for the feed
	CountLikesByTargets(kind models.TargetType, ids []uint64) (map[uint64]int64, error)
	CountCommentsByTargets(kind models.TargetType, ids []uint64) (map[uint64]int64, error)
	LikedByTargets(kind models.TargetType, ids []uint64, userID uint64) (map[uint64]bool, error)
}

// SpotlightRepository defines data access for the featured-artist record.
type SpotlightRepository interface {
	// CreateAsCurrent flips the previous current row and inserts the new one
	// in a single transaction
	CreateAsCurrent(spotlight *models.Spotlight) error
	FindCurrent() (*models.Spotlight, error)
	ListPrevious() ([]models.Spotlight, error)
	FindByID(id uint64) (*models.Spotlight, error)
}

// UserRepository defines data access for identity-backed users and their
// notifications.
type UserRepository interface {
	// UpsertByExternalID creates or refreshes the local profile row for an
	// identity-provider subject
	UpsertByExternalID(user *models.User) (*models.User, error)
	FindByID(id uint64) (*models.User, error)
	List(params utils.PaginationParams) ([]models.User, int64, error)
	Count() (int64, error)
	CountByIDs(ids []uint64) (int64, error)

	CreateNotification(n *models.Notification) error
	ListNotifications(userID uint64, params utils.PaginationParams) ([]models.Notification, int64, error)
	MarkNotificationRead(id, userID uint64) error
	MarkAllNotificationsRead(userID uint64) error
}
