package utils

import "github.com/google/uuid"

// GenerateInviteToken returns an opaque token embedded in invite emails.
func GenerateInviteToken() string {
	return uuid.NewString()
}
