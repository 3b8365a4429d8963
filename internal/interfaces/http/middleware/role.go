package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRoles restricts a route to the given roles. It must run after
// JWTAuthMiddleware so the role claim is in the context.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		role := GetJWTRole(c)
		if role == "" {
			abortForbidden(c, "No role in token")
			return
		}
		if _, ok := allowed[role]; !ok {
			abortForbidden(c, "Insufficient role for this operation")
			return
		}
		c.Next()
	}
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "FORBIDDEN",
			"message": message,
		},
	})
}
