package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/soundcollective/collective-api/internal/constants"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
	"github.com/soundcollective/collective-api/internal/middleware"
	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/services"
)

type EventHandler struct {
	communityService *services.CommunityService
	calendarService  *services.CalendarService
}

func NewEventHandler(communityService *services.CommunityService, calendarService *services.CalendarService) *EventHandler {
	return &EventHandler{
		communityService: communityService,
		calendarService:  calendarService,
	}
}

// calendarTokens reads the viewer's calendar tokens from the session, if the
// OAuth flow has been completed.
func calendarTokens(c *gin.Context) (access, refresh string) {
	session := sessions.Default(c)
	if v, ok := session.Get(constants.SessionKeyCalendarAccess).(string); ok {
		access = v
	}
	if v, ok := session.Get(constants.SessionKeyCalendarRefresh).(string); ok {
		refresh = v
	}
	return access, refresh
}

// saveRefreshedToken replaces the session access token after a refresh.
func saveRefreshedToken(c *gin.Context, token string) {
	if token == "" {
		return
	}
	session := sessions.Default(c)
	session.Set(constants.SessionKeyCalendarAccess, token)
	if err := session.Save(); err != nil {
		log.Printf("failed to save refreshed calendar token: %v", err)
	}
}

// CreateEvent creates a community event, mirroring it to the viewer's external
// calendar when connected
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type createEventRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Location    string     `json:"location"`
		StartsAt    time.Time  `json:"starts_at" binding:"required"`
		EndsAt      *time.Time `json:"ends_at"`
		AllDay      bool       `json:"all_day"`
	}
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Title and start time are required")
		return
	}

	access, refresh := calendarTokens(c)
	event, err := h.communityService.CreateEvent(c.Request.Context(), services.CreateEventInput{
		Title:                req.Title,
		Description:          req.Description,
		Location:             req.Location,
		StartsAt:             req.StartsAt,
		EndsAt:               req.EndsAt,
		AllDay:               req.AllDay,
		CreatorID:            userID,
		CalendarAccessToken:  access,
		CalendarRefreshToken: refresh,
	})
	if err != nil {
		respondCommunityError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// UpdateEvent applies a partial update. Creator only.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type updateEventRequest struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Location    *string    `json:"location"`
		StartsAt    *time.Time `json:"starts_at"`
		EndsAt      *time.Time `json:"ends_at"`
		AllDay      *bool      `json:"all_day"`
	}
	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	event, err := h.communityService.UpdateEvent(eventID, userID, services.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		AllDay:      req.AllDay,
	})
	if err != nil {
		respondCommunityError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes the event with its RSVPs, likes, and comments. Creator
// only.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.communityService.DeleteEvent(eventID, userID); err != nil {
		respondCommunityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// ListEvents returns local events for ?year=&month=, plus external calendar
// events for the same window when the viewer's calendar is connected. External
// copies of locally mirrored events are suppressed.
func (h *EventHandler) ListEvents(c *gin.Context) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	if v := c.Query("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid year")
			return
		}
		year = parsed
	}
	if v := c.Query("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			apierrors.BadRequest(c, "Invalid month")
			return
		}
		month = parsed
	}

	local, err := h.communityService.EventsByMonth(year, month)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch events")
		return
	}

	external := []services.CalendarEvent{}
	access, refresh := calendarTokens(c)
	if h.calendarService != nil && access != "" {
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)
		fetched, refreshed, err := h.calendarService.ListEvents(c.Request.Context(), access, refresh, from, to)
		switch {
		case errors.Is(err, services.ErrCalendarReconnect):
			apierrors.ReconnectRequired(c)
			return
		case err != nil:
			// Calendar trouble degrades to local-only rather than failing
			// the month view.
			log.Printf("external calendar fetch failed: %v", err)
		default:
			saveRefreshedToken(c, refreshed)
			external = services.MergeExternalEvents(local, fetched)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"events":          local,
		"external_events": external,
	})
}

// UpcomingEvents returns the next events starting after now
func (h *EventHandler) UpcomingEvents(c *gin.Context) {
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

	events, err := h.communityService.UpcomingEvents(limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch events")
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// RSVP records or overwrites the viewer's response to an event
func (h *EventHandler) RSVP(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type rsvpRequest struct {
		Status models.RSVPStatus `json:"status" binding:"required"`
	}
	var req rsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Status is required")
		return
	}

	rsvp, err := h.communityService.RSVP(eventID, userID, req.Status)
	if err != nil {
		respondCommunityError(c, err)
		return
	}

	c.JSON(http.StatusOK, rsvp)
}

// respondCommunityError maps community service errors to API responses.
func respondCommunityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrPollNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotCreator):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrPollExpired):
		apierrors.UnprocessableOperation(c, err.Error())
	case errors.Is(err, services.ErrInvalidPollOption),
		errors.Is(err, services.ErrPollOptionsRequired),
		errors.Is(err, services.ErrInvalidRSVPStatus),
		errors.Is(err, services.ErrEventTitleRequired),
		errors.Is(err, services.ErrPollTitleRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
