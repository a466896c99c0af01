package dto

import (
	"time"

	"github.com/soundcollective/collective-api/internal/models"
)

// UserDTO is the lightweight profile shape used in API responses
type UserDTO struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// TeamMemberDTO represents a project member in API responses
type TeamMemberDTO struct {
	User     UserDTO            `json:"user"`
	Role     models.ProjectRole `json:"role"`
	JoinedAt time.Time          `json:"joined_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}
}

// ToTeamMemberDTO converts a project member to DTO
func ToTeamMemberDTO(member models.ProjectMember) TeamMemberDTO {
	return TeamMemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToTeamMemberDTOs converts a slice of members
func ToTeamMemberDTOs(members []models.ProjectMember) []TeamMemberDTO {
	dtos := make([]TeamMemberDTO, len(members))
	for i, member := range members {
		dtos[i] = ToTeamMemberDTO(member)
	}
	return dtos
}
