package authn

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"authgate/internal/identity"
	"authgate/internal/token"
	"authgate/pkg/logger"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// ResolvePrincipal is the request authorizer: it extracts a bearer token
// from headerName, validates it, resolves the subject's current roles and
// attaches a principal to the request context.
//
// A missing, malformed, invalid or expired token — and a subject that no
// longer resolves — all forward the request unauthenticated; the endpoint
// might be public, so denial belongs to the policy layer. The only hard
// failure here is a store infrastructure error, which is a 503, never a
// deny. An already-populated principal is left untouched.
func ResolvePrincipal(codec *token.Codec, store identity.Store, headerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFrom(c.Request.Context()); ok {
			c.Next()
			return
		}

		raw := strings.TrimSpace(c.GetHeader(headerName))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			c.Next()
			return
		}
		tok := strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
		if tok == "" {
			c.Next()
			return
		}

		claims, err := codec.Decode(tok, time.Now().UTC())
		if err != nil {
			logger.FromGin(c).Debug("bearer token rejected", "err", err)
			c.Next()
			return
		}

		roles, err := store.RolesByLogin(c.Request.Context(), claims.Login())
		if errors.Is(err, identity.ErrNotFound) {
			// Valid token, vanished or deactivated subject: the token must
			// never outlive the identity it names.
			logger.FromGin(c).Debug("token subject no longer resolvable", "subject", claims.Login())
			c.Next()
			return
		}
		if err != nil {
			logger.FromGin(c).Error("role lookup failed", "err", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "role lookup unavailable"})
			return
		}

		ctx := WithPrincipal(c.Request.Context(), &Principal{Login: claims.Login(), Roles: roles})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
