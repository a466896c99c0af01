package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Location    string     `gorm:"type:varchar(255)" json:"location"`
	StartsAt    time.Time  `gorm:"not null" json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	AllDay      bool       `gorm:"not null;default:false" json:"all_day"`

	// Id of the mirrored event in the external calendar, when the push succeeded.
	// Used to suppress the duplicate when both copies appear in a month view.
	ExternalID *string `gorm:"type:varchar(255)" json:"external_id"`

	// Stamped once the reminder mail for this event has gone out.
	ReminderSentAt *time.Time `json:"-"`

	CreatorID uint64         `gorm:"not null" json:"creator_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator User   `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	RSVPs   []RSVP `gorm:"foreignKey:EventID" json:"rsvps,omitempty"`
}

type RSVPStatus string

const (
	RSVPAttending RSVPStatus = "attending"
	RSVPMaybe     RSVPStatus = "maybe"
	RSVPDeclined  RSVPStatus = "declined"
)

// RSVP is unique per (event, user); re-RSVP overwrites the status.
type RSVP struct {
	EventID   uint64     `gorm:"primarykey" json:"event_id"`
	UserID    uint64     `gorm:"primarykey" json:"user_id"`
	Status    RSVPStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relations
	Event Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
