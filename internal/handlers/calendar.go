package handlers

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soundcollective/collective-api/internal/constants"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
	"github.com/soundcollective/collective-api/internal/services"
)

// CalendarHandler drives the external calendar OAuth handshake. Tokens live
// in the viewer's session, never in the database.
type CalendarHandler struct {
	calendarService *services.CalendarService
}

func NewCalendarHandler(calendarService *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// AuthURL returns the provider consent URL with a fresh state nonce stored in
// the session
func (h *CalendarHandler) AuthURL(c *gin.Context) {
	state := uuid.NewString()

	session := sessions.Default(c)
	session.Set(constants.SessionKeyCalendarState, state)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": h.calendarService.AuthURL(state)})
}

// Callback completes the OAuth handshake. The state parameter must match the
// nonce issued by AuthURL.
func (h *CalendarHandler) Callback(c *gin.Context) {
	session := sessions.Default(c)

	expected, _ := session.Get(constants.SessionKeyCalendarState).(string)
	if expected == "" || c.Query("state") != expected {
		apierrors.BadRequest(c, "Invalid OAuth state")
		return
	}
	session.Delete(constants.SessionKeyCalendarState)

	code := c.Query("code")
	if code == "" {
		apierrors.BadRequest(c, "Missing authorization code")
		return
	}

	token, err := h.calendarService.Exchange(c.Request.Context(), code)
	if err != nil {
		apierrors.UpstreamError(c, "Failed to exchange authorization code")
		return
	}

	session.Set(constants.SessionKeyCalendarAccess, token.AccessToken)
	if token.RefreshToken != "" {
		session.Set(constants.SessionKeyCalendarRefresh, token.RefreshToken)
	}
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Calendar connected successfully"})
}

// Status reports whether the viewer's calendar is connected
func (h *CalendarHandler) Status(c *gin.Context) {
	access, _ := calendarTokens(c)
	c.JSON(http.StatusOK, gin.H{"connected": access != ""})
}

// Revoke disconnects the viewer's calendar, revoking the token upstream and
// dropping it from the session
func (h *CalendarHandler) Revoke(c *gin.Context) {
	access, _ := calendarTokens(c)
	if access != "" {
		if err := h.calendarService.RevokeToken(c.Request.Context(), access); err != nil {
			// The session tokens are dropped either way.
			log.Printf("calendar token revoke failed: %v", err)
		}
	}

	session := sessions.Default(c)
	session.Delete(constants.SessionKeyCalendarAccess)
	session.Delete(constants.SessionKeyCalendarRefresh)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Calendar disconnected"})
}
