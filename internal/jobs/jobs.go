package jobs

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/services"
)

// Job names accepted by the manual trigger endpoint.
const (
	JobCleanupActivities = "cleanup-activities"
	JobMarkOverdueTasks  = "mark-overdue-tasks"
	JobEventReminders    = "event-reminders"
)

// Manager owns the scheduled maintenance jobs. Every job is also runnable on
// demand through the maintenance endpoint.
type Manager struct {
	cron   *cron.Cron
	db     *gorm.DB
	mailer *services.Mailer
}

func NewManager(db *gorm.DB, mailer *services.Mailer) *Manager {
	return &Manager{
		cron:   cron.New(),
		db:     db,
		mailer: mailer,
	}
}

// Start registers the schedules and launches the cron loop.
func (m *Manager) Start() error {
	if _, err := m.cron.AddFunc("@hourly", func() {
		if err := m.MarkOverdueTasks(); err != nil {
			log.Printf("jobs: mark overdue tasks: %v", err)
		}
	}); err != nil {
		return err
	}

	if _, err := m.cron.AddFunc("@daily", func() {
		if err := m.CleanupOrphanedActivities(); err != nil {
			log.Printf("jobs: cleanup activities: %v", err)
		}
	}); err != nil {
		return err
	}

	if _, err := m.cron.AddFunc("@every 30m", func() {
		if err := m.SendEventReminders(); err != nil {
			log.Printf("jobs: event reminders: %v", err)
		}
	}); err != nil {
		return err
	}

	m.cron.Start()
	return nil
}

// Stop halts the cron loop, waiting for running jobs to finish.
func (m *Manager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

// Run executes a single job by name. Returns false when the name is unknown.
func (m *Manager) Run(name string) (bool, error) {
	switch name {
	case JobCleanupActivities:
		return true, m.CleanupOrphanedActivities()
	case JobMarkOverdueTasks:
		return true, m.MarkOverdueTasks()
	case JobEventReminders:
		return true, m.SendEventReminders()
	default:
		return false, nil
	}
}

// CleanupOrphanedActivities nulls activity references to tasks and resources
// that no longer exist. Deletes already null these inline; the sweep catches
// rows left behind by older data.
func (m *Manager) CleanupOrphanedActivities() error {
	result := m.db.Model(&models.ProjectActivity{}).
		Where("task_id IS NOT NULL AND task_id NOT IN (?)",
			m.db.Model(&models.Task{}).Select("id")).
		Update("task_id", nil)
	if result.Error != nil {
		return result.Error
	}
	swept := result.RowsAffected

	result = m.db.Model(&models.ProjectActivity{}).
		Where("resource_id IS NOT NULL AND resource_id NOT IN (?)",
			m.db.Model(&models.Resource{}).Select("id")).
		Update("resource_id", nil)
	if result.Error != nil {
		return result.Error
	}
	swept += result.RowsAffected

	if swept > 0 {
		log.Printf("jobs: nulled %d orphaned activity references", swept)
	}
	return nil
}

// MarkOverdueTasks flips open tasks past their deadline to overdue.
func (m *Manager) MarkOverdueTasks() error {
	result := m.db.Model(&models.Task{}).
		Where("deadline IS NOT NULL AND deadline < ?", time.Now()).
		Where("status IN ?", []models.TaskStatus{models.TaskStatusPending, models.TaskStatusInProgress}).
		Update("status", models.TaskStatusOverdue)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("jobs: marked %d tasks overdue", result.RowsAffected)
	}
	return nil
}

// SendEventReminders mails attending users for events starting within the
// next 24 hours, at most once per event.
func (m *Manager) SendEventReminders() error {
	if m.mailer == nil {
		return nil
	}

	now := time.Now()
	var events []models.Event
	if err := m.db.
		Where("starts_at > ? AND starts_at < ?", now, now.Add(24*time.Hour)).
		Where("reminder_sent_at IS NULL").
		Find(&events).Error; err != nil {
		return err
	}

	for _, event := range events {
		var attendees []models.User
		if err := m.db.
			Joins("JOIN rsvps ON rsvps.user_id = users.id").
			Where("rsvps.event_id = ? AND rsvps.status = ?", event.ID, models.RSVPAttending).
			Find(&attendees).Error; err != nil {
			return err
		}

		when := event.StartsAt.Format("Mon Jan 2 15:04 MST")
		for _, user := range attendees {
			if user.Email == "" {
				continue
			}
			if err := m.mailer.SendEventReminder(user.Email, user.Name, event.Title, when); err != nil {
				log.Printf("jobs: reminder mail to %s: %v", user.Email, err)
			}
		}

		if err := m.db.Model(&models.Event{}).
			Where("id = ?", event.ID).
			Update("reminder_sent_at", now).Error; err != nil {
			return err
		}
	}
	return nil
}
