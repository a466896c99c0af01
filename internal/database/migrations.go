package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for filtering and aggregate recomputation
		{"tasks", "idx_tasks_project_id", "project_id"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_deadline", "deadline"},

		// Membership lookups on every authorized request
		{"project_members", "idx_project_members_project_id", "project_id"},
		{"project_members", "idx_project_members_user_id", "user_id"},

		// Feed and community reads
		{"events", "idx_events_starts_at", "starts_at"},
		{"events", "idx_events_created_at", "created_at"},
		{"polls", "idx_polls_created_at", "created_at"},
		{"poll_votes", "idx_poll_votes_poll_id", "poll_id"},
		{"rsvps", "idx_rsvps_event_id", "event_id"},

		// Engagement lookups by target
		{"likes", "idx_likes_target", "target_type, target_id"},
		{"comments", "idx_comments_target", "target_type, target_id"},

		// Activity log reads per project
		{"project_activities", "idx_project_activities_project_id", "project_id"},

		// Identity-provider lookup on every request
		{"users", "idx_users_external_id", "external_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		fmt.Printf("Created index %s on %s(%s)\n", idx.name, idx.table, idx.columns)
	}

	return nil
}
