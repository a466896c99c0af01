package models

import (
	"time"

	"gorm.io/gorm"
)

type Poll struct {
	ID        uint64 `gorm:"primarykey" json:"id"`
	Title     string `gorm:"type:varchar(255);not null" json:"title"`
	Content   string `gorm:"type:text" json:"content"`
	CreatorID uint64 `gorm:"not null" json:"creator_id"`

	// Nil means the poll never expires.
	EndsAt *time.Time `json:"ends_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator User         `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Options []PollOption `gorm:"foreignKey:PollID" json:"options,omitempty"`
}

// PollOption caches its vote count; the count is moved inside the same
// transaction as the vote row whenever a voter switches options.
type PollOption struct {
	ID     uint64 `gorm:"primarykey" json:"id"`
	PollID uint64 `gorm:"not null" json:"poll_id"`
	Text   string `gorm:"type:varchar(255);not null" json:"text"`
	Votes  int    `gorm:"not null;default:0" json:"votes"`

	// Relations
	Poll Poll `gorm:"foreignKey:PollID" json:"poll,omitempty"`
}

// PollVote holds a voter's single active choice for a poll.
type PollVote struct {
	PollID    uint64    `gorm:"primarykey" json:"poll_id"`
	UserID    uint64    `gorm:"primarykey" json:"user_id"`
	OptionID  uint64    `gorm:"not null" json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Poll   Poll       `gorm:"foreignKey:PollID" json:"poll,omitempty"`
	User   User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Option PollOption `gorm:"foreignKey:OptionID" json:"option,omitempty"`
}
