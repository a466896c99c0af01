package dto

import (
	"time"

	"github.com/soundcollective/collective-api/internal/models"
)

// FeedItemType discriminates the entries of the merged community feed
type FeedItemType string

const (
	FeedItemEvent FeedItemType = "event"
	FeedItemPoll  FeedItemType = "poll"
)

// FeedItem is one entry of the merged, reverse-chronological community feed.
// Counts and viewer state are resolved for the requesting user.
type FeedItem struct {
	Type         FeedItemType      `json:"type"`
	ID           uint64            `json:"id"`
	Title        string            `json:"title"`
	Content      string            `json:"content,omitempty"`
	Creator      *UserDTO          `json:"creator,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	LikeCount    int64             `json:"like_count"`
	CommentCount int64             `json:"comment_count"`
	ViewerLiked  bool              `json:"viewer_liked"`
	Event        *FeedEventDetails `json:"event,omitempty"`
	Poll         *FeedPollDetails  `json:"poll,omitempty"`
}

// FeedEventDetails carries the event-specific fields of a feed item
type FeedEventDetails struct {
	StartsAt   time.Time          `json:"starts_at"`
	EndsAt     *time.Time         `json:"ends_at"`
	AllDay     bool               `json:"all_day"`
	Location   string             `json:"location,omitempty"`
	ViewerRSVP *models.RSVPStatus `json:"viewer_rsvp"`
}

// FeedPollDetails carries the poll-specific fields of a feed item
type FeedPollDetails struct {
	EndsAt         *time.Time       `json:"ends_at"`
	Expired        bool             `json:"expired"`
	TotalVotes     int              `json:"total_votes"`
	Options        []FeedPollOption `json:"options"`
	ViewerOptionID *uint64          `json:"viewer_option_id"`
}

// FeedPollOption is a poll option with its share of the vote
type FeedPollOption struct {
	ID      uint64  `json:"id"`
	Text    string  `json:"text"`
	Votes   int     `json:"votes"`
	Percent float64 `json:"percent"`
}
