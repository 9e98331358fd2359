package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/bid-pricing/pkg/common"
)

// TokenVerifier validates a bearer token and returns the subject it was
// issued to.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// AuthMiddleware guards routes behind a bearer token. On success the subject
// is stored in the context under "user_email".
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			common.UnauthorizedResponse(c, "Not authenticated")
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			common.UnauthorizedResponse(c, "Not authenticated")
			return
		}

		subject, err := verifier.VerifyToken(token)
		if err != nil {
			common.UnauthorizedResponse(c, "Could not validate credentials")
			return
		}

		c.Set("user_email", subject)
		c.Next()
	}
}
