package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
	"github.com/soundcollective/collective-api/internal/middleware"
	"github.com/soundcollective/collective-api/internal/services"
)

type PollHandler struct {
	communityService *services.CommunityService
}

func NewPollHandler(communityService *services.CommunityService) *PollHandler {
	return &PollHandler{communityService: communityService}
}

// CreatePoll creates a poll with its options. A null ends_at means the poll
// never expires.
func (h *PollHandler) CreatePoll(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type createPollRequest struct {
		Title   string     `json:"title" binding:"required"`
		Content string     `json:"content"`
		EndsAt  *time.Time `json:"ends_at"`
		Options []string   `json:"options" binding:"required"`
	}
	var req createPollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Title and options are required")
		return
	}

	poll, err := h.communityService.CreatePoll(services.CreatePollInput{
		Title:     req.Title,
		Content:   req.Content,
		EndsAt:    req.EndsAt,
		Options:   req.Options,
		CreatorID: userID,
	})
	if err != nil {
		respondCommunityError(c, err)
		return
	}

	c.JSON(http.StatusCreated, poll)
}

// Vote records the viewer's choice and returns the refreshed poll
func (h *PollHandler) Vote(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	pollID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type voteRequest struct {
		OptionID uint64 `json:"option_id" binding:"required"`
	}
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Option ID is required")
		return
	}

	poll, err := h.communityService.Vote(pollID, req.OptionID, userID)
	if err != nil {
		respondCommunityError(c, err)
		return
	}

	c.JSON(http.StatusOK, poll)
}

// DeletePoll removes a poll with its options and votes. Creator only.
func (h *PollHandler) DeletePoll(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	pollID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.communityService.DeletePoll(pollID, userID); err != nil {
		respondCommunityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Poll deleted successfully"})
}

// CountPolls returns the total number of polls
func (h *PollHandler) CountPolls(c *gin.Context) {
	count, err := h.communityService.CountPolls()
	if err != nil {
		apierrors.InternalError(c, "Failed to count polls")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
