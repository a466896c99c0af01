package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/soundcollective/collective-api/internal/constants"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
)

// RequireCronSecret guards the maintenance trigger endpoint with a shared
// secret, compared in constant time.
func RequireCronSecret(secret string) gin.HandlerFunc {
	expected := []byte(secret)

	return func(c *gin.Context) {
		provided := []byte(c.GetHeader(constants.CronSecretHeader))
		if len(provided) == 0 || subtle.ConstantTimeCompare(expected, provided) != 1 {
			apierrors.Unauthorized(c, "Invalid cron secret")
			c.Abort()
			return
		}
		c.Next()
	}
}
