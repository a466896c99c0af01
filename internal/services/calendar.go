package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/imroc/req/v3"
	"golang.org/x/oauth2"
)

// ErrCalendarReconnect signals that both the access token and the refresh
// token are spent; the client must redo the OAuth flow.
var ErrCalendarReconnect = errors.New("calendar authorization expired, reconnect required")

const (
	calendarAPIBase  = "https://www.googleapis.com/calendar/v3"
	calendarRevokeURL = "https://oauth2.googleapis.com/revoke"
	calendarTimeout  = 10 * time.Second
)

// CalendarService talks to the external calendar's REST API. Calls carry an
// explicit timeout and retry exactly once after a token refresh.
type CalendarService struct {
	oauth  *oauth2.Config
	client *req.Client
}

// CalendarEvent is the neutral event shape exchanged with the external calendar.
type CalendarEvent struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	AllDay      bool       `json:"all_day"`
}

// NewCalendarService creates a calendar client for the given OAuth app.
func NewCalendarService(clientID, clientSecret, redirectURL string) *CalendarService {
	return &CalendarService{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/calendar.events"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL: "https://oauth2.googleapis.com/token",
			},
		},
		client: req.C().
			SetBaseURL(calendarAPIBase).
			SetTimeout(calendarTimeout),
	}
}

// AuthURL returns the URL the user visits to grant calendar access. The state
// nonce is verified on the callback.
func (s *CalendarService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for tokens.
func (s *CalendarService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return token, nil
}

// Refresh trades a refresh token for a fresh access token.
func (s *CalendarService) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	source := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return token, nil
}

// RevokeToken invalidates a token at the provider.
func (s *CalendarService) RevokeToken(ctx context.Context, token string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"token": token}).
		Post(calendarRevokeURL)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	if resp.IsErrorState() {
		return fmt.Errorf("revoke rejected: %s", resp.Status)
	}
	return nil
}

// googleEventTime is the provider's split date/dateTime representation.
type googleEventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
}

type googleEvent struct {
	ID          string          `json:"id,omitempty"`
	Summary     string          `json:"summary"`
	Description string          `json:"description,omitempty"`
	Location    string          `json:"location,omitempty"`
	Start       googleEventTime `json:"start"`
	End         googleEventTime `json:"end"`
}

type googleEventList struct {
	Items []googleEvent `json:"items"`
}

// ListEvents returns the user's external events in [timeMin, timeMax). When
// the access token is expired it refreshes once and retries; a second failure
// surfaces as ErrCalendarReconnect. The refreshed access token, if any, is
// returned so the caller can hand it back to the client.
func (s *CalendarService) ListEvents(ctx context.Context, accessToken, refreshToken string, timeMin, timeMax time.Time) ([]CalendarEvent, string, error) {
	var list googleEventList
	resp, err := s.client.R().
		SetContext(ctx).
		SetBearerAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"timeMin":      timeMin.Format(time.RFC3339),
			"timeMax":      timeMax.Format(time.RFC3339),
			"singleEvents": "true",
			"orderBy":      "startTime",
		}).
		SetSuccessResult(&list).
		Get("/calendars/primary/events")
	if err != nil {
		return nil, "", fmt.Errorf("calendar request failed: %w", err)
	}

	refreshed := ""
	if resp.StatusCode == http.StatusUnauthorized {
		if refreshToken == "" {
			return nil, "", ErrCalendarReconnect
		}
		token, err := s.Refresh(ctx, refreshToken)
		if err != nil {
			return nil, "", ErrCalendarReconnect
		}
		refreshed = token.AccessToken

		resp, err = s.client.R().
			SetContext(ctx).
			SetBearerAuthToken(refreshed).
			SetQueryParams(map[string]string{
				"timeMin":      timeMin.Format(time.RFC3339),
				"timeMax":      timeMax.Format(time.RFC3339),
				"singleEvents": "true",
				"orderBy":      "startTime",
			}).
			SetSuccessResult(&list).
			Get("/calendars/primary/events")
		if err != nil {
			return nil, "", fmt.Errorf("calendar request failed: %w", err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, "", ErrCalendarReconnect
		}
	}
	if resp.IsErrorState() {
		return nil, "", fmt.Errorf("calendar rejected request: %s", resp.Status)
	}

	events := make([]CalendarEvent, 0, len(list.Items))
	for _, item := range list.Items {
		events = append(events, fromGoogleEvent(item))
	}
	return events, refreshed, nil
}

// CreateEvent pushes an event to the user's external calendar and returns the
// provider's event id.
func (s *CalendarService) CreateEvent(ctx context.Context, accessToken, refreshToken string, event CalendarEvent) (string, error) {
	body := toGoogleEvent(event)

	var created googleEvent
	resp, err := s.client.R().
		SetContext(ctx).
		SetBearerAuthToken(accessToken).
		SetBody(&body).
		SetSuccessResult(&created).
		Post("/calendars/primary/events")
	if err != nil {
		return "", fmt.Errorf("calendar request failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if refreshToken == "" {
			return "", ErrCalendarReconnect
		}
		token, err := s.Refresh(ctx, refreshToken)
		if err != nil {
			return "", ErrCalendarReconnect
		}
		resp, err = s.client.R().
			SetContext(ctx).
			SetBearerAuthToken(token.AccessToken).
			SetBody(&body).
			SetSuccessResult(&created).
			Post("/calendars/primary/events")
		if err != nil {
			return "", fmt.Errorf("calendar request failed: %w", err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return "", ErrCalendarReconnect
		}
	}
	if resp.IsErrorState() {
		return "", fmt.Errorf("calendar rejected event: %s", resp.Status)
	}
	return created.ID, nil
}

func toGoogleEvent(event CalendarEvent) googleEvent {
	ge := googleEvent{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
	}

	end := event.StartsAt.Add(time.Hour)
	if event.EndsAt != nil {
		end = *event.EndsAt
	}

	if event.AllDay {
		ge.Start = googleEventTime{Date: event.StartsAt.Format("2006-01-02")}
		ge.End = googleEventTime{Date: end.Format("2006-01-02")}
	} else {
		ge.Start = googleEventTime{DateTime: event.StartsAt.Format(time.RFC3339)}
		ge.End = googleEventTime{DateTime: end.Format(time.RFC3339)}
	}
	return ge
}

func fromGoogleEvent(item googleEvent) CalendarEvent {
	event := CalendarEvent{
		ID:          item.ID,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
	}

	if item.Start.Date != "" {
		event.AllDay = true
		if t, err := time.Parse("2006-01-02", item.Start.Date); err == nil {
			event.StartsAt = t
		}
	} else if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
		event.StartsAt = t
	}

	if item.End.Date != "" {
		if t, err := time.Parse("2006-01-02", item.End.Date); err == nil {
			event.EndsAt = &t
		}
	} else if item.End.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
			event.EndsAt = &t
		}
	}
	return event
}
