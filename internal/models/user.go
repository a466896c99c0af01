package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	ExternalID string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Email      string         `gorm:"type:varchar(255)" json:"email"`
	AvatarURL  string         `gorm:"type:varchar(512)" json:"avatar_url"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Memberships     []ProjectMember  `gorm:"foreignKey:UserID" json:"-"`
	CreatedProjects []Project        `gorm:"foreignKey:CreatorID" json:"-"`
	Assignments     []TaskAssignment `gorm:"foreignKey:UserID" json:"-"`
}
