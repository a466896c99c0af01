package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SpotlightKind string

const (
	SpotlightMusician SpotlightKind = "musician"
	SpotlightVenue    SpotlightKind = "venue"
)

// Spotlight is the featured musician/venue record. At most one row has
// IsCurrent set; creating a new spotlight flips the previous current row
// inside the same transaction as the insert.
type Spotlight struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	Kind        SpotlightKind `gorm:"type:varchar(20);not null" json:"kind"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	ImageURL    string        `gorm:"type:varchar(1024)" json:"image_url"`
	IsCurrent   bool          `gorm:"not null;default:false" json:"is_current"`

	// Semi-structured payloads: social/streaming links and display stats.
	Links datatypes.JSON `json:"links"`
	Stats datatypes.JSON `json:"stats"`

	CreatorID uint64         `gorm:"not null" json:"creator_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}
