package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
	"github.com/soundcollective/collective-api/internal/middleware"
	"github.com/soundcollective/collective-api/internal/services"
)

type ResourceHandler struct {
	projectService *services.ProjectService
}

func NewResourceHandler(projectService *services.ProjectService) *ResourceHandler {
	return &ResourceHandler{projectService: projectService}
}

// CreateResource adds a resource to the project
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	project, ok := projectFromContext(c)
	if !ok {
		return
	}

	type createResourceRequest struct {
		Title       string `json:"title" binding:"required"`
		Type        string `json:"type"`
		URL         string `json:"url"`
		Description string `json:"description"`
	}
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Resource title is required")
		return
	}

	resource, err := h.projectService.CreateResource(services.CreateResourceInput{
		Title:       req.Title,
		Type:        req.Type,
		URL:         req.URL,
		Description: req.Description,
		ProjectID:   project.ID,
		CreatorID:   userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// ListResources returns every resource across projects
func (h *ResourceHandler) ListResources(c *gin.Context) {
	resources, err := h.projectService.ListResources()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch resources")
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

// DeleteResource removes a resource
func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	resourceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.DeleteResource(resourceID, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resource deleted successfully"})
}
