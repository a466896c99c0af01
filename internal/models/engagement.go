package models

import (
	"errors"
	"time"
)

// TargetType names the entity kinds that likes and comments can attach to.
type TargetType string

const (
	TargetEvent     TargetType = "event"
	TargetPoll      TargetType = "poll"
	TargetSpotlight TargetType = "spotlight"
)

var ErrInvalidTargetType = errors.New("invalid engagement target type")

// EngagementTarget is the validated (kind, id) pair used at the API boundary.
// Storage keeps the two loose columns; this type keeps invalid kinds out of
// the services.
type EngagementTarget struct {
	Type TargetType
	ID   uint64
}

// ParseTarget validates a raw target kind and id.
func ParseTarget(kind string, id uint64) (EngagementTarget, error) {
	switch TargetType(kind) {
	case TargetEvent, TargetPoll, TargetSpotlight:
	default:
		return EngagementTarget{}, ErrInvalidTargetType
	}
	if id == 0 {
		return EngagementTarget{}, ErrInvalidTargetType
	}
	return EngagementTarget{Type: TargetType(kind), ID: id}, nil
}

type Like struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	UserID     uint64     `gorm:"not null;uniqueIndex:idx_likes_user_target" json:"user_id"`
	TargetType TargetType `gorm:"type:varchar(20);not null;uniqueIndex:idx_likes_user_target" json:"target_type"`
	TargetID   uint64     `gorm:"not null;uniqueIndex:idx_likes_user_target" json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

type Comment struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	UserID     uint64     `gorm:"not null" json:"user_id"`
	TargetType TargetType `gorm:"type:varchar(20);not null" json:"target_type"`
	TargetID   uint64     `gorm:"not null" json:"target_id"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time  `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
