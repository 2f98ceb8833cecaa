package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/response"
)

var (
	ErrMissingToken = apperror.New(http.StatusUnauthorized, "missing Authorization header")
	ErrMalformed    = apperror.New(http.StatusUnauthorized, "invalid Authorization header format")
	ErrInvalidToken = apperror.New(http.StatusUnauthorized, "invalid or expired token")
)

// AuthRequired rejects requests without a valid "Authorization: Bearer <token>"
// and stores the token's user in the gin context.
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		claims, err := jwtManager.ParseAndValidate(token)
		if err != nil {
			response.Error(c, ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", ErrMalformed
	}
	return token, nil
}
