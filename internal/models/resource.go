package models

import (
	"time"

	"gorm.io/gorm"
)

type Resource struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Type        string         `gorm:"type:varchar(100)" json:"type"`
	URL         string         `gorm:"type:varchar(1024)" json:"url"`
	Description string         `gorm:"type:text" json:"description"`
	ProjectID   uint64         `gorm:"not null" json:"project_id"`
	CreatorID   uint64         `gorm:"not null" json:"creator_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"last_updated"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Creator User    `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}
