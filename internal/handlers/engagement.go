package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
	"github.com/soundcollective/collective-api/internal/middleware"
	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/services"
)

type EngagementHandler struct {
	engagementService *services.EngagementService
}

func NewEngagementHandler(engagementService *services.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagementService: engagementService}
}

// targetFromQuery parses the ?target_type=&target_id= pair.
func targetFromQuery(c *gin.Context) (models.EngagementTarget, bool) {
	id, err := strconv.ParseUint(c.Query("target_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid target_id")
		return models.EngagementTarget{}, false
	}
	target, err := models.ParseTarget(c.Query("target_type"), id)
	if err != nil {
		apierrors.BadRequest(c, "Invalid target_type")
		return models.EngagementTarget{}, false
	}
	return target, true
}

// ToggleLike flips the viewer's like on an event, poll, or spotlight
func (h *EngagementHandler) ToggleLike(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type likeRequest struct {
		TargetType string `json:"target_type" binding:"required"`
		TargetID   uint64 `json:"target_id" binding:"required"`
	}
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Target type and ID are required")
		return
	}

	target, err := models.ParseTarget(req.TargetType, req.TargetID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid target type")
		return
	}

	liked, err := h.engagementService.ToggleLike(userID, target)
	if err != nil {
		respondEngagementError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// LikeStatus reports whether the viewer has liked the target
func (h *EngagementHandler) LikeStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	target, ok := targetFromQuery(c)
	if !ok {
		return
	}

	liked, err := h.engagementService.UserLiked(userID, target)
	if err != nil {
		apierrors.InternalError(c, "Failed to check like status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// CreateComment appends a comment to an event, poll, or spotlight
func (h *EngagementHandler) CreateComment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type commentRequest struct {
		TargetType string `json:"target_type" binding:"required"`
		TargetID   uint64 `json:"target_id" binding:"required"`
		Content    string `json:"content" binding:"required"`
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Target and content are required")
		return
	}

	target, err := models.ParseTarget(req.TargetType, req.TargetID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid target type")
		return
	}

	comment, err := h.engagementService.CreateComment(userID, target, req.Content)
	if err != nil {
		respondEngagementError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListComments returns the target's comments, newest first
func (h *EngagementHandler) ListComments(c *gin.Context) {
	target, ok := targetFromQuery(c)
	if !ok {
		return
	}

	limit := commentLimit(c)
	comments, err := h.engagementService.ListComments(target, limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// CountComments counts the target's comments
func (h *EngagementHandler) CountComments(c *gin.Context) {
	target, ok := targetFromQuery(c)
	if !ok {
		return
	}

	count, err := h.engagementService.CountComments(target)
	if err != nil {
		apierrors.InternalError(c, "Failed to count comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func commentLimit(c *gin.Context) int {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	return limit
}

func respondEngagementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTargetNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, models.ErrInvalidTargetType):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
