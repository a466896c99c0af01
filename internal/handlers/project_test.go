package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/soundcollective/collective-api/internal/constants"
	"github.com/soundcollective/collective-api/internal/database"
	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/repository"
	"github.com/soundcollective/collective-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type projectHandlerTestEnv struct {
	db             *gorm.DB
	handler        *ProjectHandler
	taskHandler    *TaskHandler
	projectService *services.ProjectService
}

func setupProjectHandlerTestEnv(t *testing.T) projectHandlerTestEnv {
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
	projectService := services.NewProjectService(projectRepo, userRepo, nil)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return projectHandlerTestEnv{
		db:             db,
		handler:        NewProjectHandler(projectService),
		taskHandler:    NewTaskHandler(projectService),
		projectService: projectService,
	}
}

func projectTestContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func createProjectHandlerUser(t *testing.T, db *gorm.DB, externalID, name string) *models.User {
	t.Helper()
	user := &models.User{ExternalID: externalID, Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestProjectHandler_CreateProject(t *testing.T) {
	env := setupProjectHandlerTestEnv(t)
	user := createProjectHandlerUser(t, env.db, "ext-1", "alice")

	payload := map[string]any{
		"name": "Album Release",
		"tasks": []map[string]any{
			{"title": "Book studio"},
			{"title": "Mix tracks"},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := projectTestContext(http.MethodPost, "/api/projects", body, user.ID)
	env.handler.CreateProject(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Album Release", response.Name)
	require.Equal(t, 2, response.TotalTasks)
	require.Equal(t, 0, response.Progress)
}

func TestProjectHandler_CreateProject_MissingName(t *testing.T) {
	env := setupProjectHandlerTestEnv(t)
	user := createProjectHandlerUser(t, env.db, "ext-1", "alice")

	body, err := json.Marshal(map[string]any{"description": "no name"})
	require.NoError(t, err)

	c, w := projectTestContext(http.MethodPost, "/api/projects", body, user.ID)
	env.handler.CreateProject(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_SaveDraft_AllowsMissingName(t *testing.T) {
	env := setupProjectHandlerTestEnv(t)
	user := createProjectHandlerUser(t, env.db, "ext-1", "alice")

	body, err := json.Marshal(map[string]any{"description": "just an idea"})
	require.NoError(t, err)

	c, w := projectTestContext(http.MethodPost, "/api/projects/draft", body, user.ID)
	env.handler.SaveDraft(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Untitled Project", response.Name)
	require.Equal(t, models.ProjectStatusDraft, response.Status)
}

func TestProjectHandler_GetProject_UsesContextProject(t *testing.T) {
	env := setupProjectHandlerTestEnv(t)
	user := createProjectHandlerUser(t, env.db, "ext-1", "alice")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:      "Tour",
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	c, w := projectTestContext(http.MethodGet, "/api/projects/1", nil, user.ID)
	c.Set(constants.ContextKeyProject, *project)

	env.handler.GetProject(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, project.ID, response.ID)
	require.Len(t, response.Members, 1)
}

func TestProjectHandler_DeleteProject_ThenGone(t *testing.T) {
	env := setupProjectHandlerTestEnv(t)
	user := createProjectHandlerUser(t, env.db, "ext-1", "alice")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:      "Tour",
		CreatorID: user.ID,
		Tasks:     []services.TaskInput{{Title: "Routing"}},
	})
	require.NoError(t, err)

	c, w := projectTestContext(http.MethodDelete, "/api/projects/1", nil, user.ID)
	c.Set(constants.ContextKeyProject, *project)
	env.handler.DeleteProject(c)
	require.Equal(t, http.StatusOK, w.Code)

	_, err = env.projectService.GetProject(project.ID)
	require.ErrorIs(t, err, services.ErrProjectNotFound)
}

func TestTaskHandler_UpdateTaskStatus(t *testing.T) {
	env := setupProjectHandlerTestEnv(t)
	user := createProjectHandlerUser(t, env.db, "ext-1", "alice")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:      "EP",
		CreatorID: user.ID,
		Tasks:     []services.TaskInput{{Title: "Artwork"}},
	})
	require.NoError(t, err)

	full, err := env.projectService.GetProject(project.ID)
	require.NoError(t, err)
	task := full.Tasks[0]

	body, err := json.Marshal(map[string]string{"status": "completed"})
	require.NoError(t, err)

	c, w := projectTestContext(http.MethodPut, "/api/tasks/1/status", body, user.ID)
	c.Set(constants.ContextKeyTask, task)
	env.taskHandler.UpdateTaskStatus(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, models.TaskStatusCompleted, response.Status)
	require.NotNil(t, response.CompletedAt)

	full, err = env.projectService.GetProject(project.ID)
	require.NoError(t, err)
	require.Equal(t, 100, full.Progress)
}

func TestTaskHandler_UpdateTaskStatus_InvalidStatus(t *testing.T) {
	env := setupProjectHandlerTestEnv(t)
	user := createProjectHandlerUser(t, env.db, "ext-1", "alice")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:      "EP",
		CreatorID: user.ID,
		Tasks:     []services.TaskInput{{Title: "Artwork"}},
	})
	require.NoError(t, err)

	full, err := env.projectService.GetProject(project.ID)
	require.NoError(t, err)

	body, err := json.Marshal(map[string]string{"status": "done"})
	require.NoError(t, err)

	c, w := projectTestContext(http.MethodPut, "/api/tasks/1/status", body, user.ID)
	c.Set(constants.ContextKeyTask, full.Tasks[0])
	env.taskHandler.UpdateTaskStatus(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_RemoveLastAdminRejected(t *testing.T) {
	env := setupProjectHandlerTestEnv(t)
	user := createProjectHandlerUser(t, env.db, "ext-1", "alice")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:      "Tour",
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	c, w := projectTestContext(http.MethodDelete, "/api/projects/1/members/1", nil, user.ID)
	c.Set(constants.ContextKeyProject, *project)
	c.Params = gin.Params{{Key: "userId", Value: "1"}}
	env.handler.RemoveMember(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
