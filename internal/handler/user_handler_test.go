package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taman-digital/internal/domain"
)

func TestUserHandler_Auth(t *testing.T) {
	s := newTestServer(t, nil)
	s.register(t, "sari")

	t.Run("duplicate username", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "sari",
			"password": "x",
			"name":     "Sari Dua",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid registration", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "bad name",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.Contains(t, resp.Fields, "username")
		assert.Contains(t, resp.Fields, "password")
	})

	t.Run("login by email", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Identifier: "sari@example.com", Password: "rahasia123"})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[AuthResponse](t, w)
		assert.Equal(t, "sari", resp.User.Username)
		assert.NotEmpty(t, resp.Session.Token)
		assert.NotEmpty(t, resp.Session.ExpiresAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Identifier: "sari", Password: "salah"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"identifier": "sari"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("provider login", func(t *testing.T) {
		tests := []struct {
			name       string
			body       any
			wantStatus int
			wantUser   string
		}{
			{"verified credential", map[string]string{"credential": "tok-dewi"}, http.StatusOK, "dewilestari"},
			{"email of a password account", map[string]string{"credential": "tok-sari"}, http.StatusConflict, ""},
			{"forged credential", map[string]string{"credential": "tok-palsu"}, http.StatusUnauthorized, ""},
			{"bare profile is not a credential", map[string]string{"email": "sari@example.com", "name": "Sari"}, http.StatusBadRequest, ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := s.do(t, http.MethodPost, "/api/v1/auth/provider", "", tt.body)
				require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
				if tt.wantUser != "" {
					assert.Equal(t, tt.wantUser, decode[AuthResponse](t, w).User.Username)
				}
			})
		}
	})

	t.Run("logout ends the session", func(t *testing.T) {
		token := s.register(t, "budi")

		w := s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUserHandler_Profile(t *testing.T) {
	s := newTestServer(t, nil)
	sari := s.register(t, "sari")
	s.register(t, "budi")

	t.Run("me hides the password hash", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/me", sari, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "passwordHash")
	})

	t.Run("update profile", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/me/profile", sari, domain.User{
			Name:    "Sari Dewi",
			Email:   "sari@example.com",
			PenName: "Embun",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/users/sari", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Embun", decode[domain.User](t, w).PenName)
	})

	t.Run("search", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/users?q=embun", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		users := decode[[]domain.User](t, w)
		require.Len(t, users, 1)
		assert.Equal(t, "sari", users[0].Username)
	})

	t.Run("follow toggles", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/users/budi/follow", sari, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode[map[string]any](t, w)["following"])

		w = s.do(t, http.MethodPost, "/api/v1/users/sari/follow", sari, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/users/nobody/follow", sari, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/users/nobody", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete account", func(t *testing.T) {
		commitPost(t, s, sari, "Terakhir", domain.StatusPublished)
		w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Identifier: "sari", Password: "rahasia123"})
		require.Equal(t, http.StatusOK, w.Code)
		otherDevice := decode[AuthResponse](t, w).Session.Token

		w = s.do(t, http.MethodDelete, "/api/v1/me", sari, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/me/trash", otherDevice, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "every session of the account ends")

		w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "sari",
			"password": "rahasia123",
			"name":     "Sari Baru",
		})
		assert.Equal(t, http.StatusConflict, w.Code, "the name is held while its posts are in the trash")

		w = s.do(t, http.MethodGet, "/api/v1/users/sari", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/users/sari/posts", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[[]domain.Post](t, w))
	})
}
