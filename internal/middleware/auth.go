package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/soundcollective/collective-api/internal/constants"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/repository"
)

// identityClaims are the profile claims carried by the identity provider's
// session token.
type identityClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// RequireAuth verifies the bearer token issued by the external identity
// provider and resolves it to a local user row, creating or refreshing the
// profile on the way. The local user id is stored in the request context.
func RequireAuth(secret string, userRepo repository.UserRepository) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := &identityClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return key, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			apierrors.Unauthorized(c, "Invalid session token")
			c.Abort()
			return
		}

		user, err := userRepo.UpsertByExternalID(&models.User{
			ExternalID: claims.Subject,
			Name:       claims.Name,
			Email:      claims.Email,
			AvatarURL:  claims.Picture,
		})
		if err != nil {
			apierrors.InternalError(c, "Failed to resolve user")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
