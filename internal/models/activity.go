package models

import "time"

type ActivityType string

const (
	ActivityTaskCreated     ActivityType = "task_created"
	ActivityTaskCompleted   ActivityType = "task_completed"
	ActivityTaskDeleted     ActivityType = "task_deleted"
	ActivityResourceAdded   ActivityType = "resource_added"
	ActivityResourceRemoved ActivityType = "resource_removed"
	ActivityMemberJoined    ActivityType = "member_joined"
	ActivityNote            ActivityType = "note"
)

// ProjectActivity is an append-only log entry. Rows are never updated; they are
// removed only when their project is deleted.
type ProjectActivity struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	ProjectID   uint64       `gorm:"not null" json:"project_id"`
	Type        ActivityType `gorm:"type:varchar(50);not null" json:"type"`
	Description string       `gorm:"type:text;not null" json:"description"`
	TaskID      *uint64      `json:"task_id"`
	ResourceID  *uint64      `json:"resource_id"`
	ActorID     uint64       `gorm:"not null" json:"actor_id"`
	CreatedAt   time.Time    `json:"created_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Actor   User    `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
