package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/soundcollective/collective-api/internal/database"
	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/repository"
	"github.com/soundcollective/collective-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type projectTestEnv struct {
	db      *gorm.DB
	service *ProjectService
}

func setupProjectTestEnv(t *testing.T) projectTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.Resource{},
		&models.ProjectActivity{},
		&models.Notification{},
		&models.ChatMessage{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	projectRepo := repository.NewProjectRepository(db)
	userRepo := repository.NewUserRepository(db)
	service := NewProjectService(projectRepo, userRepo, nil)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return projectTestEnv{db: db, service: service}
}

func createTestUser(t *testing.T, db *gorm.DB, externalID, name string) *models.User {
	t.Helper()
	user := &models.User{ExternalID: externalID, Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestProjectService_CreateProject_AggregatesStartAtZero(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "ext-1", "alice")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:      "Album Release",
		CreatorID: user.ID,
		Tasks: []TaskInput{
			{Title: "Book studio"},
			{Title: "Mix tracks"},
			{Title: "Master tracks"},
			{Title: "Press vinyl"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 4, project.TotalTasks)
	require.Equal(t, 0, project.CompletedTasks)
	require.Equal(t, 0, project.Progress)
}

func TestProjectService_CreateProject_RequiresName(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "ext-1", "alice")

	_, err := env.service.CreateProject(CreateProjectInput{Name: "   ", CreatorID: user.ID})
	require.ErrorIs(t, err, ErrProjectNameRequired)
}

func TestProjectService_SaveDraft_FillsUntitledPlaceholders(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "ext-1", "alice")

	project, err := env.service.SaveDraft(CreateProjectInput{
		CreatorID: user.ID,
		Tasks:     []TaskInput{{Title: ""}, {Title: "Named"}},
		Resources: []ResourceInput{{Title: "  "}},
	})
	require.NoError(t, err)
	require.Equal(t, "Untitled Project", project.Name)
	require.Equal(t, models.ProjectStatusDraft, project.Status)

	full, err := env.service.GetProject(project.ID)
	require.NoError(t, err)
	titles := make([]string, 0, len(full.Tasks))
	for _, task := range full.Tasks {
		titles = append(titles, task.Title)
	}
	require.Contains(t, titles, "Untitled Task 1")
	require.Contains(t, titles, "Named")
	require.Len(t, full.Resources, 1)
	require.Equal(t, "Untitled Resource 1", full.Resources[0].Title)
}

func TestProjectService_CreatorIsAlwaysAdminMember(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createTestUser(t, env.db, "ext-1", "alice")
	other := createTestUser(t, env.db, "ext-2", "bob")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:          "Tour",
		CreatorID:     creator.ID,
		TeamMemberIDs: []uint64{other.ID},
	})
	require.NoError(t, err)

	members, err := env.service.ListMembers(project.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	roles := map[uint64]models.ProjectRole{}
	for _, m := range members {
		roles[m.UserID] = m.Role
	}
	require.Equal(t, models.RoleAdmin, roles[creator.ID])
	require.Equal(t, models.RoleMember, roles[other.ID])
}

func TestProjectService_TaskCompletion_UpdatesAggregates(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "ext-1", "alice")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:      "Album Release",
		CreatorID: user.ID,
		Tasks: []TaskInput{
			{Title: "Book studio"},
			{Title: "Mix tracks"},
			{Title: "Master tracks"},
			{Title: "Press vinyl"},
		},
	})
	require.NoError(t, err)

	full, err := env.service.GetProject(project.ID)
	require.NoError(t, err)
	require.Len(t, full.Tasks, 4)

	// Complete two of the four tasks.
	for _, task := range full.Tasks[:2] {
		loaded := task
		_, err := env.service.UpdateTaskStatus(&loaded, user.ID, models.TaskStatusCompleted)
		require.NoError(t, err)
	}

	full, err = env.service.GetProject(project.ID)
	require.NoError(t, err)
	require.Equal(t, 4, full.TotalTasks)
	require.Equal(t, 2, full.CompletedTasks)
	require.Equal(t, 50, full.Progress)

	// Deleting one completed task leaves 1/3 done, rounded to 33.
	var completed models.Task
	require.NoError(t, env.db.Where("project_id = ? AND status = ?", project.ID, models.TaskStatusCompleted).First(&completed).Error)
	require.NoError(t, env.service.DeleteTask(&completed, user.ID))

	full, err = env.service.GetProject(project.ID)
	require.NoError(t, err)
	require.Equal(t, 3, full.TotalTasks)
	require.Equal(t, 1, full.CompletedTasks)
	require.Equal(t, 33, full.Progress)
}

func TestProjectService_CompletedAtTracksStatus(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "ext-1", "alice")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:      "Tour",
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	task, err := env.service.CreateTask(CreateTaskInput{
		Title:     "Book venue",
		ProjectID: project.ID,
		CreatorID: user.ID,
	})
	require.NoError(t, err)
	require.Nil(t, task.CompletedAt)

	task, err = env.service.UpdateTaskStatus(task, user.ID, models.TaskStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)

	task, err = env.service.UpdateTaskStatus(task, user.ID, models.TaskStatusInProgress)
	require.NoError(t, err)
	require.Nil(t, task.CompletedAt)
}

func TestProjectService_UpdateProject_ReplacesChildSets(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "ext-1", "alice")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:      "EP",
		CreatorID: user.ID,
		Tasks:     []TaskInput{{Title: "Old task"}},
		Resources: []ResourceInput{{Title: "Old doc"}},
	})
	require.NoError(t, err)

	completed := models.TaskStatusCompleted
	newTasks := []TaskInput{
		{Title: "New task 1", Status: &completed},
		{Title: "New task 2"},
	}
	newResources := []ResourceInput{{Title: "New doc", URL: "https://example.com"}}

	updated, err := env.service.UpdateProject(project.ID, user.ID, UpdateProjectInput{
		Tasks:     &newTasks,
		Resources: &newResources,
	})
	require.NoError(t, err)

	require.Len(t, updated.Tasks, 2)
	require.Len(t, updated.Resources, 1)
	require.Equal(t, "New doc", updated.Resources[0].Title)
	require.Equal(t, 2, updated.TotalTasks)
	require.Equal(t, 1, updated.CompletedTasks)
	require.Equal(t, 50, updated.Progress)
}

func TestProjectService_UpdateProject_RequiresEditAccess(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createTestUser(t, env.db, "ext-1", "alice")
	member := createTestUser(t, env.db, "ext-2", "bob")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:          "Tour",
		CreatorID:     creator.ID,
		TeamMemberIDs: []uint64{member.ID},
	})
	require.NoError(t, err)

	name := "Hijacked"
	_, err = env.service.UpdateProject(project.ID, member.ID, UpdateProjectInput{Name: &name})
	require.ErrorIs(t, err, ErrEditPermissionDenied)
}

func TestProjectService_DeleteProject_CascadesEverything(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "ext-1", "alice")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:      "Festival",
		CreatorID: user.ID,
		Tasks:     []TaskInput{{Title: "Line-up"}},
		Resources: []ResourceInput{{Title: "Budget sheet"}},
	})
	require.NoError(t, err)

	_, err = env.service.LogActivity(project.ID, user.ID, "kickoff note")
	require.NoError(t, err)
	_, err = env.service.PostChatMessage(project.ID, user.ID, "hello team")
	require.NoError(t, err)

	require.NoError(t, env.service.DeleteProject(project.ID))

	_, err = env.service.GetProject(project.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)

	var count int64
	env.db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&count)
	require.Zero(t, count)
	env.db.Model(&models.Resource{}).Where("project_id = ?", project.ID).Count(&count)
	require.Zero(t, count)
	env.db.Model(&models.ProjectActivity{}).Where("project_id = ?", project.ID).Count(&count)
	require.Zero(t, count)
	env.db.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&count)
	require.Zero(t, count)
	env.db.Model(&models.ChatMessage{}).Where("project_id = ?", project.ID).Count(&count)
	require.Zero(t, count)
}

func TestProjectService_AssigneesMustBeMembers(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createTestUser(t, env.db, "ext-1", "alice")
	outsider := createTestUser(t, env.db, "ext-2", "mallory")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:      "Tour",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	task, err := env.service.CreateTask(CreateTaskInput{
		Title:     "Van rental",
		ProjectID: project.ID,
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	_, err = env.service.UpdateTaskAssignment(task, creator.ID, []uint64{outsider.ID})
	require.ErrorIs(t, err, ErrInvalidAssignee)
}

func TestProjectService_AssignmentNotifiesAssignees(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createTestUser(t, env.db, "ext-1", "alice")
	member := createTestUser(t, env.db, "ext-2", "bob")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:          "Tour",
		CreatorID:     creator.ID,
		TeamMemberIDs: []uint64{member.ID},
	})
	require.NoError(t, err)

	task, err := env.service.CreateTask(CreateTaskInput{
		Title:     "Van rental",
		ProjectID: project.ID,
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	updated, err := env.service.UpdateTaskAssignment(task, creator.ID, []uint64{member.ID})
	require.NoError(t, err)
	require.Len(t, updated.Assignments, 1)
	require.Equal(t, member.ID, updated.Assignments[0].UserID)

	var notifications []models.Notification
	require.NoError(t, env.db.Where("user_id = ?", member.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotificationAssignment, notifications[0].Type)
}

func TestProjectService_InviteRejectsExistingMember(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createTestUser(t, env.db, "ext-1", "alice")
	member := createTestUser(t, env.db, "ext-2", "bob")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:      "Tour",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	_, err = env.service.InviteToProject(project.ID, creator.ID, member.ID, models.RoleMember)
	require.NoError(t, err)

	_, err = env.service.InviteToProject(project.ID, creator.ID, member.ID, models.RoleMember)
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestProjectService_LastAdminIsProtected(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createTestUser(t, env.db, "ext-1", "alice")
	member := createTestUser(t, env.db, "ext-2", "bob")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:          "Tour",
		CreatorID:     creator.ID,
		TeamMemberIDs: []uint64{member.ID},
	})
	require.NoError(t, err)

	err = env.service.RemoveFromProject(project.ID, creator.ID)
	require.ErrorIs(t, err, ErrLastAdmin)

	err = env.service.UpdateProjectRole(project.ID, creator.ID, models.RoleMember)
	require.ErrorIs(t, err, ErrLastAdmin)

	// Promote the second member; the original admin can then step down.
	require.NoError(t, env.service.UpdateProjectRole(project.ID, member.ID, models.RoleAdmin))
	require.NoError(t, env.service.RemoveFromProject(project.ID, creator.ID))
}

func TestProjectService_ActivityReferencesNulledOnTaskDelete(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "ext-1", "alice")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:      "EP",
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	task, err := env.service.CreateTask(CreateTaskInput{
		Title:     "Track listing",
		ProjectID: project.ID,
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	// Task creation logged an activity pointing at the task.
	var withRef int64
	env.db.Model(&models.ProjectActivity{}).Where("task_id = ?", task.ID).Count(&withRef)
	require.Equal(t, int64(1), withRef)

	newTasks := []TaskInput{{Title: "Replacement"}}
	_, err = env.service.UpdateProject(project.ID, user.ID, UpdateProjectInput{Tasks: &newTasks})
	require.NoError(t, err)

	// The log entry survives but no longer references the removed task.
	env.db.Model(&models.ProjectActivity{}).Where("task_id = ?", task.ID).Count(&withRef)
	require.Zero(t, withRef)

	var total int64
	env.db.Model(&models.ProjectActivity{}).Where("project_id = ?", project.ID).Count(&total)
	require.NotZero(t, total)
}

func TestProjectService_DeadlineCanBeCleared(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "ext-1", "alice")

	deadline := time.Now().Add(48 * time.Hour)
	project, err := env.service.CreateProject(CreateProjectInput{
		Name:      "Single",
		CreatorID: user.ID,
		Deadline:  &deadline,
	})
	require.NoError(t, err)
	require.NotNil(t, project.Deadline)

	updated, err := env.service.UpdateProject(project.ID, user.ID, UpdateProjectInput{ClearDeadline: true})
	require.NoError(t, err)
	require.Nil(t, updated.Deadline)
}

func TestProjectService_UpdateProject_RejectedInputTouchesNothing(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "ext-1", "alice")

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:      "Original Name",
		CreatorID: user.ID,
		Tasks:     []TaskInput{{Title: "Book studio"}},
	})
	require.NoError(t, err)

	newName := "Hijacked Name"
	_, err = env.service.UpdateProject(project.ID, user.ID, UpdateProjectInput{
		Name:  &newName,
		Tasks: &[]TaskInput{{Title: "   "}},
	})
	require.ErrorIs(t, err, ErrTaskTitleRequired)

	reloaded, err := env.service.GetProject(project.ID)
	require.NoError(t, err)
	require.Equal(t, "Original Name", reloaded.Name)
	require.Len(t, reloaded.Tasks, 1)
	require.Equal(t, "Book studio", reloaded.Tasks[0].Title)
}

func TestProjectService_InlineResourceTitlesValidated(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "ext-1", "alice")

	_, err := env.service.CreateProject(CreateProjectInput{
		Name:      "EP Release",
		CreatorID: user.ID,
		Resources: []ResourceInput{{Title: "  "}},
	})
	require.ErrorIs(t, err, ErrResourceTitleRequired)

	project, err := env.service.CreateProject(CreateProjectInput{
		Name:      "EP Release",
		CreatorID: user.ID,
		Resources: []ResourceInput{{Title: "Stage plot"}},
	})
	require.NoError(t, err)

	_, err = env.service.UpdateProject(project.ID, user.ID, UpdateProjectInput{
		Resources: &[]ResourceInput{{Title: ""}},
	})
	require.ErrorIs(t, err, ErrResourceTitleRequired)

	reloaded, err := env.service.GetProject(project.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Resources, 1)
	require.Equal(t, "Stage plot", reloaded.Resources[0].Title)
}

func TestProjectService_ListActivities_Paginated(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "ext-1", "alice")

	project, err := env.service.CreateProject(CreateProjectInput{Name: "Tour", CreatorID: user.ID})
	require.NoError(t, err)

	for _, note := range []string{"booked van", "printed posters", "confirmed support act"} {
		_, err := env.service.LogActivity(project.ID, user.ID, note)
		require.NoError(t, err)
	}

	page, total, err := env.service.ListActivities(project.ID, utils.PaginationParams{Page: 1, Limit: 2, Offset: 0})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, page, 2)

	rest, _, err := env.service.ListActivities(project.ID, utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
}
