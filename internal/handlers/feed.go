package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/soundcollective/collective-api/internal/constants"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
	"github.com/soundcollective/collective-api/internal/middleware"
	"github.com/soundcollective/collective-api/internal/services"
)

type FeedHandler struct {
	communityService *services.CommunityService
}

func NewFeedHandler(communityService *services.CommunityService) *FeedHandler {
	return &FeedHandler{communityService: communityService}
}

// GetFeed returns the merged community feed, newest first, annotated with the
// viewer's like/RSVP/vote state
func (h *FeedHandler) GetFeed(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	limit := constants.DefaultFeedLimit
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			apierrors.BadRequest(c, "Invalid limit")
			return
		}
		if parsed > constants.MaxFeedLimit {
			parsed = constants.MaxFeedLimit
		}
		limit = parsed
	}

	items, err := h.communityService.Feed(userID, limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to build feed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
