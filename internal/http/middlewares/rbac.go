package middlewares

import (
	"net/http"
	"slices"

	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole is a coarse route gate. Ownership checks stay in the services.
func (m *AuthMiddleware) RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok {
			abortUnauthorized(c, "Missing identity context")
			return
		}

		if !slices.Contains(roles, p.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":      "forbidden",
					"message":   "You do not have permission to perform this action",
					"requestId": requestIDOf(c),
				},
			})
			return
		}
		c.Next()
	}
}
