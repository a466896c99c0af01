package constants

// Context keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyProject = "project"
	ContextKeyMember  = "project_member"
	ContextKeyTask    = "task"
)

// Session keys for the calendar OAuth handshake
const (
	SessionCookieName         = "collective_session"
	SessionKeyCalendarState   = "calendar_oauth_state"
	SessionKeyCalendarAccess  = "calendar_access_token"
	SessionKeyCalendarRefresh = "calendar_refresh_token"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Feed
const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 50
)

// Header carrying the shared secret for the maintenance trigger endpoint
const CronSecretHeader = "X-Cron-Secret"
