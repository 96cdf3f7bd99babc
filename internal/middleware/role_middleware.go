package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kinthithe/pos-api/internal/utils"
)

// RequireRole restricts a route group to the given roles. It runs after the
// JWT middleware, which sets "role" from the token claims.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString("role")] {
			utils.Error(c, 403, "FORBIDDEN", "Insufficient role for this operation")
			c.Abort()
			return
		}
		c.Next()
	}
}
