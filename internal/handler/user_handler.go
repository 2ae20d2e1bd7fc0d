package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taman-digital/internal/domain"
	"taman-digital/internal/middleware"
	"taman-digital/internal/repository"
	"taman-digital/internal/service"
)

// UserHandler handles authentication, profiles and the follow graph.
type UserHandler struct {
	accounts service.AccountServiceInterface
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accounts service.AccountServiceInterface) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// LoginRequest is the body of POST /auth/login. Identifier is a username or an email.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// AuthResponse is returned by every endpoint that starts a session.
type AuthResponse struct {
	User    *domain.User    `json:"user"`
	Session SessionResponse `json:"session"`
}

// Register handles POST /api/v1/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req repository.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user, sess, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "register user")
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{User: user, Session: toSessionResponse(sess)})
}

// Login handles POST /api/v1/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "identifier and password are required")
		return
	}
	user, sess, err := h.accounts.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(c, err, "log in")
		return
	}
	c.JSON(http.StatusOK, AuthResponse{User: user, Session: toSessionResponse(sess)})
}

// ProviderLoginRequest carries the ID token issued by the sign-in provider.
type ProviderLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// LoginWithProvider handles POST /api/v1/auth/provider
func (h *UserHandler) LoginWithProvider(c *gin.Context) {
	var req ProviderLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Credential) == "" {
		badRequest(c, "credential is required")
		return
	}
	user, sess, err := h.accounts.LoginWithProvider(c.Request.Context(), req.Credential)
	if err != nil {
		respondError(c, err, "log in")
		return
	}
	c.JSON(http.StatusOK, AuthResponse{User: user, Session: toSessionResponse(sess)})
}

// Logout handles POST /api/v1/auth/logout
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.accounts.Logout(c.Request.Context(), middleware.GetSession(c)); err != nil {
		respondError(c, err, "log out")
		return
	}
	c.Status(http.StatusNoContent)
}

// Search handles GET /api/v1/users?q=
func (h *UserHandler) Search(c *gin.Context) {
	users, err := h.accounts.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err, "search users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// Profile handles GET /api/v1/users/:username
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.accounts.Profile(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "retrieve user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Me handles GET /api/v1/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.accounts.Profile(c.Request.Context(), middleware.GetSession(c).Username)
	if err != nil {
		respondError(c, err, "retrieve user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/me/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req domain.User
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user, err := h.accounts.UpdateProfile(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		respondError(c, err, "update profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ToggleFollow handles POST /api/v1/users/:username/follow
func (h *UserHandler) ToggleFollow(c *gin.Context) {
	following, err := h.accounts.ToggleFollow(c.Request.Context(), middleware.GetSession(c), c.Param("username"))
	if err != nil {
		respondError(c, err, "follow user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}

// DeleteAccount handles DELETE /api/v1/me
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.accounts.DeleteAccount(c.Request.Context(), middleware.GetSession(c)); err != nil {
		respondError(c, err, "delete account")
		return
	}
	c.Status(http.StatusNoContent)
}
