package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on-hold"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Project struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'planning'" json:"status"`
	Priority    Priority      `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`

	// Derived from the project's tasks; recomputed after every task mutation.
	Progress       int `gorm:"not null;default:0" json:"progress"`
	TotalTasks     int `gorm:"not null;default:0" json:"total_tasks"`
	CompletedTasks int `gorm:"not null;default:0" json:"completed_tasks"`

	Deadline  *time.Time     `json:"deadline"`
	CreatorID uint64         `gorm:"not null" json:"creator_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator   User              `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Members   []ProjectMember   `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Tasks     []Task            `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
	Resources []Resource        `gorm:"foreignKey:ProjectID" json:"resources,omitempty"`
	Activity  []ProjectActivity `gorm:"foreignKey:ProjectID" json:"activity,omitempty"`
}

type ProjectRole string

const (
	RoleAdmin  ProjectRole = "admin"
	RoleMember ProjectRole = "member"
)

type ProjectMember struct {
	ProjectID   uint64      `gorm:"primarykey" json:"project_id"`
	UserID      uint64      `gorm:"primarykey" json:"user_id"`
	Role        ProjectRole `gorm:"type:varchar(20);not null" json:"role"`
	InvitedByID *uint64     `json:"invited_by_id"`
	JoinedAt    time.Time   `json:"joined_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
