package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"authgate/internal/authn"
	"authgate/internal/identity"

	"github.com/gin-gonic/gin"
)

func principalInjector(p *authn.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			ctx := authn.WithPrincipal(c.Request.Context(), p)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func doRequire(t *testing.T, p *authn.Principal, req Requirement) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", principalInjector(p), Require(req), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w.Code
}

func TestRequire_PublicAlwaysPasses(t *testing.T) {
	if code := doRequire(t, nil, Public()); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRequire_UnauthenticatedIs401(t *testing.T) {
	if code := doRequire(t, nil, Role(identity.RoleAdmin)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRequire_ForbiddenIs403(t *testing.T) {
	p := &authn.Principal{Login: "alice", Roles: []string{identity.RoleUser}}
	if code := doRequire(t, p, Role(identity.RoleAdmin)); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequire_MatchingRolePasses(t *testing.T) {
	p := &authn.Principal{Login: "root", Roles: []string{identity.RoleAdmin}}
	if code := doRequire(t, p, Role(identity.RoleAdmin)); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}
