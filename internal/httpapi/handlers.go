package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"authgate/internal/authn"
	"authgate/internal/identity"
	"authgate/internal/password"
	"authgate/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth     *authn.Service
	Store    identity.Store
	Throttle *authn.Throttle
}

// --- Auth ---

type loginRequest struct {
	Login  string `json:"login"`
	Secret string `json:"secret"`
}

// Login verifies credentials and issues a token. The failure message is
// uniform across unknown login, wrong secret and deactivated accounts.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Login == "" || req.Secret == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "login and secret required"})
		return
	}

	ok, err := h.Throttle.Allow(c.Request.Context(), req.Login, c.ClientIP())
	if err != nil {
		// The throttle is best-effort protection; a counter outage must
		// not take logins down with it.
		logger.FromGin(c).Warn("login throttle unavailable", "err", err)
	} else if !ok {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
		return
	}

	tok, err := h.Auth.Authenticate(c.Request.Context(), req.Login, req.Secret)
	if errors.Is(err, authn.ErrInvalidCredentials) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("authentication failed", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "authentication unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}

// Me returns the authenticated principal.
func (h Handlers) Me(c *gin.Context) {
	p, ok := authn.PrincipalFrom(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	roles := p.Roles
	if roles == nil {
		roles = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"login": p.Login, "roles": roles})
}

// --- Users (admin) ---

// userResponse deliberately omits the secret hash.
type userResponse struct {
	ID     int64  `json:"id"`
	Login  string `json:"login"`
	Active bool   `json:"active"`
}

func toUserResponse(ident *identity.Identity) userResponse {
	return userResponse{ID: ident.ID, Login: ident.Login, Active: ident.Active}
}

type userForm struct {
	Login   string  `json:"login"`
	Secret  string  `json:"secret"`
	Active  *bool   `json:"active"`
	RoleIDs []int64 `json:"role_ids"`
}

func (h Handlers) ListUsers(c *gin.Context) {
	idents, err := h.Store.List(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("list users failed", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}
	out := make([]userResponse, 0, len(idents))
	for _, ident := range idents {
		out = append(out, toUserResponse(ident))
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ident, err := h.Store.FindByID(c.Request.Context(), id)
	if errors.Is(err, identity.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("get user failed", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(ident))
}

func (h Handlers) CreateUser(c *gin.Context) {
	var form userForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if form.Login == "" || form.Secret == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "login and secret required"})
		return
	}

	hash, err := password.Hash(form.Secret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "secret rejected"})
		return
	}
	active := true
	if form.Active != nil {
		active = *form.Active
	}
	ident := &identity.Identity{Login: form.Login, SecretHash: hash, Active: active}

	// Create and role assignment commit together; a rejected role ID
	// must not leave a live account behind.
	if err := h.Store.Create(c.Request.Context(), ident, form.RoleIDs); err != nil {
		h.writeUserStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(ident))
}

func (h Handlers) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var form userForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ident, err := h.Store.FindByID(c.Request.Context(), id)
	if errors.Is(err, identity.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("get user failed", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	if form.Login != "" {
		ident.Login = form.Login
	}
	// Secret changes only when a new one is supplied.
	if form.Secret != "" {
		hash, err := password.Hash(form.Secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "secret rejected"})
			return
		}
		ident.SecretHash = hash
	}
	if form.Active != nil {
		ident.Active = *form.Active
	}

	if err := h.Store.Update(c.Request.Context(), ident); err != nil {
		h.writeUserStoreError(c, err)
		return
	}
	if form.RoleIDs != nil {
		if err := h.Store.ReplaceRoles(c.Request.Context(), ident.ID, form.RoleIDs); err != nil {
			h.writeUserStoreError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, toUserResponse(ident))
}

// DeactivateUser soft-deletes: the account stops authenticating but its
// record survives for anything that references it.
func (h Handlers) DeactivateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := h.Store.Deactivate(c.Request.Context(), id)
	if errors.Is(err, identity.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("deactivate user failed", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Roles (admin) ---

type roleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h Handlers) ListRoles(c *gin.Context) {
	roles, err := h.Store.ListRoles(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("list roles failed", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleResponse{ID: r.ID, Name: r.Name})
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CreateRole(c *gin.Context) {
	var form struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if form.Name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	role := &identity.Role{Name: form.Name}
	err := h.Store.CreateRole(c.Request.Context(), role)
	if errors.Is(err, identity.ErrDuplicateRole) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "role already exists"})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("create role failed", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusCreated, roleResponse{ID: role.ID, Name: role.Name})
}

// --- helpers ---

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h Handlers) writeUserStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, identity.ErrDuplicateLogin):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "login already exists"})
	case errors.Is(err, identity.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
	default:
		logger.FromGin(c).Error("user store operation failed", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	}
}
