package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/soundcollective/collective-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupJobsTestEnv(t *testing.T) (*gorm.DB, *Manager) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Resource{},
		&models.ProjectActivity{},
		&models.Event{},
		&models.RSVP{},
	)
	require.NoError(t, err)

	manager := NewManager(db, nil)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, manager
}

func TestManager_MarkOverdueTasks(t *testing.T) {
	db, manager := setupJobsTestEnv(t)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	completedAt := time.Now()

	tasks := []models.Task{
		{Title: "late open", Status: models.TaskStatusPending, Deadline: &past, ProjectID: 1, CreatorID: 1},
		{Title: "late running", Status: models.TaskStatusInProgress, Deadline: &past, ProjectID: 1, CreatorID: 1},
		{Title: "late done", Status: models.TaskStatusCompleted, Deadline: &past, CompletedAt: &completedAt, ProjectID: 1, CreatorID: 1},
		{Title: "on time", Status: models.TaskStatusPending, Deadline: &future, ProjectID: 1, CreatorID: 1},
		{Title: "no deadline", Status: models.TaskStatusPending, ProjectID: 1, CreatorID: 1},
	}
	require.NoError(t, db.Create(&tasks).Error)

	require.NoError(t, manager.MarkOverdueTasks())

	var overdue []models.Task
	require.NoError(t, db.Where("status = ?", models.TaskStatusOverdue).Find(&overdue).Error)
	require.Len(t, overdue, 2)

	// Completed tasks stay completed even past their deadline.
	var done models.Task
	require.NoError(t, db.Where("title = ?", "late done").First(&done).Error)
	require.Equal(t, models.TaskStatusCompleted, done.Status)
}

func TestManager_CleanupOrphanedActivities(t *testing.T) {
	db, manager := setupJobsTestEnv(t)

	task := models.Task{Title: "kept", Status: models.TaskStatusPending, ProjectID: 1, CreatorID: 1}
	require.NoError(t, db.Create(&task).Error)

	orphanTaskID := task.ID + 100
	activities := []models.ProjectActivity{
		{ProjectID: 1, Type: models.ActivityTaskCreated, Description: "live ref", TaskID: &task.ID, ActorID: 1},
		{ProjectID: 1, Type: models.ActivityTaskCreated, Description: "dead ref", TaskID: &orphanTaskID, ActorID: 1},
		{ProjectID: 1, Type: models.ActivityNote, Description: "no ref", ActorID: 1},
	}
	require.NoError(t, db.Create(&activities).Error)

	require.NoError(t, manager.CleanupOrphanedActivities())

	var live models.ProjectActivity
	require.NoError(t, db.Where("description = ?", "live ref").First(&live).Error)
	require.NotNil(t, live.TaskID)

	var swept models.ProjectActivity
	require.NoError(t, db.Where("description = ?", "dead ref").First(&swept).Error)
	require.Nil(t, swept.TaskID)

	// No rows are deleted, only references cleared.
	var total int64
	db.Model(&models.ProjectActivity{}).Count(&total)
	require.Equal(t, int64(3), total)
}

func TestManager_Run_UnknownJob(t *testing.T) {
	_, manager := setupJobsTestEnv(t)

	known, err := manager.Run("defragment-vibes")
	require.NoError(t, err)
	require.False(t, known)

	known, err = manager.Run(JobMarkOverdueTasks)
	require.NoError(t, err)
	require.True(t, known)
}
