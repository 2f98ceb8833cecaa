package api

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/venue-booking-backend/internal/auth"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/venue-booking-backend/internal/user"
)

var errRoleRequired = apperror.New(http.StatusForbidden, "forbidden: account role not allowed")

// RequireRole lets the request through only for active users holding one of roles.
// The role is read from the store rather than the token, so a changed account
// takes effect on the next request. It MUST be used after auth.AuthRequired.
func RequireRole(userService user.Service, roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			response.Error(c, auth.ErrMissingToken)
			c.Abort()
			return
		}

		u, err := userService.GetByID(c.Request.Context(), userID)
		if err != nil || !u.IsActive {
			response.Error(c, auth.ErrInvalidToken)
			c.Abort()
			return
		}

		if !slices.Contains(roles, u.Role) {
			response.Error(c, errRoleRequired)
			c.Abort()
			return
		}

		c.Next()
	}
}
