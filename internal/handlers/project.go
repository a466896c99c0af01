package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soundcollective/collective-api/internal/constants"
	"github.com/soundcollective/collective-api/internal/dto"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
	"github.com/soundcollective/collective-api/internal/middleware"
	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/services"
	"github.com/soundcollective/collective-api/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// projectFromContext pulls the project loaded by RequireProjectAccess.
func projectFromContext(c *gin.Context) (models.Project, bool) {
	value, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		apierrors.InternalError(c, "Project not found in context")
		return models.Project{}, false
	}
	project, ok := value.(models.Project)
	if !ok {
		apierrors.InternalError(c, "Invalid project data")
		return models.Project{}, false
	}
	return project, true
}

type projectRequest struct {
	Name          string                   `json:"name"`
	Description   string                   `json:"description"`
	Status        *models.ProjectStatus    `json:"status"`
	Priority      *models.Priority         `json:"priority"`
	Deadline      *time.Time               `json:"deadline"`
	TeamMemberIDs []uint64                 `json:"team_member_ids"`
	Tasks         []services.TaskInput     `json:"tasks"`
	Resources     []services.ResourceInput `json:"resources"`
}

func (r projectRequest) toInput(creatorID uint64) services.CreateProjectInput {
	return services.CreateProjectInput{
		Name:          r.Name,
		Description:   r.Description,
		Status:        r.Status,
		Priority:      r.Priority,
		Deadline:      r.Deadline,
		TeamMemberIDs: r.TeamMemberIDs,
		Tasks:         r.Tasks,
		Resources:     r.Resources,
		CreatorID:     creatorID,
	}
}

// ListProjects returns the projects the current user is a member of
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projects, err := h.projectService.ListProjects(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// CreateProject creates a full project with its initial team, tasks, and resources
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(req.toInput(userID))
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// SaveDraft saves a partially filled project as a draft
func (h *ProjectHandler) SaveDraft(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.SaveDraft(req.toInput(userID))
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// GetProject returns the project loaded by RequireProjectAccess, with all
// relations
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	full, err := h.projectService.GetProject(project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, full)
}

// UpdateProject applies a partial update to the project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	type updateProjectRequest struct {
		Name        *string                   `json:"name"`
		Description *string                   `json:"description"`
		Status      *models.ProjectStatus     `json:"status"`
		Priority    *models.Priority          `json:"priority"`
		Deadline    *time.Time                `json:"deadline"`
		Tasks       *[]services.TaskInput     `json:"tasks"`
		Resources   *[]services.ResourceInput `json:"resources"`
	}

	// Parse raw JSON first to tell "deadline": null apart from an absent key
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var req updateProjectRequest
	if err := bindMap(raw, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		Tasks:       req.Tasks,
		Resources:   req.Resources,
	}
	if value, present := raw["deadline"]; present && value == nil {
		input.ClearDeadline = true
	}

	updated, err := h.projectService.UpdateProject(project.ID, userID, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteProject removes the project and everything it owns. Admin only.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(project.ID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// ListActivities returns the project's activity log, newest first
func (h *ProjectHandler) ListActivities(c *gin.Context) {
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	activities, total, err := h.projectService.ListActivities(project.ID, params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch activities")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// LogActivity appends a custom entry to the project's activity log
func (h *ProjectHandler) LogActivity(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	type logActivityRequest struct {
		Description string `json:"description" binding:"required"`
	}
	var req logActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Activity description is required")
		return
	}

	activity, err := h.projectService.LogActivity(project.ID, userID, req.Description)
	if err != nil {
		apierrors.InternalError(c, "Failed to log activity")
		return
	}

	c.JSON(http.StatusCreated, activity)
}

// CreateTask adds a task to the project
func (h *ProjectHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	type createTaskRequest struct {
		Title       string           `json:"title" binding:"required"`
		Description string           `json:"description"`
		Priority    *models.Priority `json:"priority"`
		Deadline    *time.Time       `json:"deadline"`
		AssigneeIDs []uint64         `json:"assignee_ids"`
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.projectService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		AssigneeIDs: req.AssigneeIDs,
		ProjectID:   project.ID,
		CreatorID:   userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// ListMembers returns the project's team. Pass ?role=admin|member to filter.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	var (
		members []models.ProjectMember
		err     error
	)
	if role := c.Query("role"); role != "" {
		switch models.ProjectRole(role) {
		case models.RoleAdmin, models.RoleMember:
		default:
			apierrors.BadRequest(c, "Invalid role filter")
			return
		}
		members, err = h.projectService.ListMembersByRole(project.ID, models.ProjectRole(role))
	} else {
		members, err = h.projectService.ListMembers(project.ID)
	}
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch members")
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": dto.ToTeamMemberDTOs(members)})
}

// InviteMember adds a user to the project. Admin only.
func (h *ProjectHandler) InviteMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	type inviteRequest struct {
		UserID uint64              `json:"user_id" binding:"required"`
		Role   *models.ProjectRole `json:"role"`
	}
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	role := models.RoleMember
	if req.Role != nil {
		role = *req.Role
	}

	member, err := h.projectService.InviteToProject(project.ID, userID, req.UserID, role)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamMemberDTO(*member))
}

// UpdateMemberRole changes a member's role. Admin only; demoting the last
// admin is rejected.
func (h *ProjectHandler) UpdateMemberRole(c *gin.Context) {
	project, ok := projectFromContext(c)
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	type roleRequest struct {
		Role models.ProjectRole `json:"role" binding:"required"`
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Role is required")
		return
	}
	switch req.Role {
	case models.RoleAdmin, models.RoleMember:
	default:
		apierrors.BadRequest(c, "Invalid role")
		return
	}

	if err := h.projectService.UpdateProjectRole(project.ID, memberID, req.Role); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated successfully"})
}

// RemoveMember removes a user from the project. Admin only; removing the last
// admin is rejected.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	project, ok := projectFromContext(c)
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.projectService.RemoveFromProject(project.ID, memberID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

// PostChatMessage appends a message to the project chat
func (h *ProjectHandler) PostChatMessage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	type chatRequest struct {
		Content string `json:"content" binding:"required"`
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Message content is required")
		return
	}

	message, err := h.projectService.PostChatMessage(project.ID, userID, req.Content)
	if err != nil {
		apierrors.InternalError(c, "Failed to post message")
		return
	}

	c.JSON(http.StatusCreated, message)
}

// ListChatMessages returns the project chat, newest first
func (h *ProjectHandler) ListChatMessages(c *gin.Context) {
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	messages, total, err := h.projectService.ListChatMessages(project.ID, params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// respondProjectError maps project service errors to API responses.
func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrResourceNotFound),
		errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectNameRequired),
		errors.Is(err, services.ErrTaskTitleRequired),
		errors.Is(err, services.ErrResourceTitleRequired),
		errors.Is(err, services.ErrInvalidAssignee):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEditPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAlreadyMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrLastAdmin):
		apierrors.UnprocessableOperation(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
