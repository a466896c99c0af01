package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soundcollective/collective-api/internal/constants"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
	"github.com/soundcollective/collective-api/internal/middleware"
	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/services"
)

type TaskHandler struct {
	projectService *services.ProjectService
}

func NewTaskHandler(projectService *services.ProjectService) *TaskHandler {
	return &TaskHandler{projectService: projectService}
}

// taskFromContext pulls the task loaded by RequireTaskAccess.
func taskFromContext(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return models.Task{}, false
	}
	task, ok := value.(models.Task)
	if !ok {
		apierrors.InternalError(c, "Invalid task data")
		return models.Task{}, false
	}
	return task, true
}

// GetTask returns the task loaded by RequireTaskAccess
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update to the task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	type updateTaskRequest struct {
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		Priority    *models.Priority `json:"priority"`
		Deadline    *time.Time       `json:"deadline"`
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	var req updateTaskRequest
	if err := bindMap(raw, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
	}
	if value, present := raw["deadline"]; present && value == nil {
		input.ClearDeadline = true
	}

	updated, err := h.projectService.UpdateTask(&task, userID, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// UpdateTaskStatus moves the task through its lifecycle
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	type statusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Status is required")
		return
	}
	switch req.Status {
	case models.TaskStatusPending, models.TaskStatusInProgress,
		models.TaskStatusCompleted, models.TaskStatusOverdue:
	default:
		apierrors.BadRequest(c, "Invalid task status")
		return
	}

	updated, err := h.projectService.UpdateTaskStatus(&task, userID, req.Status)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// SetAssignees replaces the task's assignee set
func (h *TaskHandler) SetAssignees(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	type assignRequest struct {
		UserIDs []uint64 `json:"user_ids"`
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.projectService.UpdateTaskAssignment(&task, userID, req.UserIDs)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Assignees updated successfully",
		"assignments": updated.Assignments,
	})
}

// DeleteTask removes the task and recomputes the project's aggregates
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteTask(&task, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
