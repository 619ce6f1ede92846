package rbac

import (
	"net/http"

	"authgate/internal/authn"

	"github.com/gin-gonic/gin"
)

// Require gates a route group on a declared requirement. It assumes the
// request authorizer already ran; it never resolves roles itself.
func Require(req Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := authn.PrincipalFrom(c.Request.Context())
		switch Check(p, req) {
		case Allow:
			c.Next()
		case DenyUnauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		case DenyForbidden:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		}
	}
}
