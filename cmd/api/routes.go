package main

import (
	"authgate/internal/httpapi"
	"authgate/internal/identity"
	"authgate/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers and declares each route's
// access policy. Keep this file free of business logic; handlers delegate
// to internal modules, and every policy decision happens in internal/rbac.
func registerRoutes(r *gin.Engine, h httpapi.Handlers) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// Token issuance is public by definition.
		api.POST("/auth/login", h.Login)

		// Any authenticated principal.
		api.GET("/me", rbac.Require(rbac.Authenticated()), h.Me)

		// User and role management is ADMIN-only.
		admin := api.Group("/admin")
		admin.Use(rbac.Require(rbac.Role(identity.RoleAdmin)))
		{
			admin.GET("/users", h.ListUsers)
			admin.POST("/users", h.CreateUser)
			admin.GET("/users/:id", h.GetUser)
			admin.PUT("/users/:id", h.UpdateUser)
			admin.DELETE("/users/:id", h.DeactivateUser)

			admin.GET("/roles", h.ListRoles)
			admin.POST("/roles", h.CreateRole)
		}
	}
}
