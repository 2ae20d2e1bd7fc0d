package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taman-digital/internal/middleware"
	"taman-digital/internal/repository"
	"taman-digital/internal/service"
	"taman-digital/internal/snapshot"
	"taman-digital/internal/store"
	"taman-digital/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	editor *service.EditorService
}

// testCredentials accepts the provider tokens the tests sign in with.
var testCredentials = verifierFunc(func(_ context.Context, credential string) (*repository.ProviderProfile, error) {
	switch credential {
	case "tok-dewi":
		return &repository.ProviderProfile{Subject: "g-dewi", Email: "dewi.lestari@example.com", Name: "Dewi Lestari"}, nil
	case "tok-sari":
		return &repository.ProviderProfile{Subject: "g-sari", Email: "sari@example.com", Name: "Sari"}, nil
	}
	return nil, fmt.Errorf("%w: unknown token", service.ErrInvalidCredentials)
})

type verifierFunc func(ctx context.Context, credential string) (*repository.ProviderProfile, error)

func (f verifierFunc) Verify(ctx context.Context, credential string) (*repository.ProviderProfile, error) {
	return f(ctx, credential)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// newTestServer wires the full API over in-memory backends.
func newTestServer(t *testing.T, generator service.TextGenerator) *testServer {
	t.Helper()

	kv := store.NewMemory()
	snaps := snapshot.NewMemory()
	v := validator.NewValidator()

	posts := repository.NewKVPostRepository(kv, repository.WithSeed(false))
	users := repository.NewKVUserRepository(kv,
		repository.WithBcryptCost(bcrypt.MinCost),
		repository.WithUsernameHold(posts.HasPosts),
	)
	messages := repository.NewKVMessageRepository(kv, time.Now)

	content := service.NewContentService(posts, snaps, v)
	editor := service.NewEditorService(content, snaps, generator, v, time.Hour)
	accounts := service.NewAccountService(users, posts, snaps, v, service.WithProviderVerifier(testCredentials))
	messaging := service.NewMessageService(messages, users, v)
	t.Cleanup(editor.Close)

	router := gin.New()
	router.Use(middleware.RequestID())
	RegisterRoutes(router, Handlers{
		Health: NewHealthHandler(map[string]Pinger{
			"database": pingFunc(func(context.Context) error { return nil }),
		}, "test"),
		Posts:    NewPostHandler(content),
		Editor:   NewEditorHandler(editor),
		Users:    NewUserHandler(accounts),
		Messages: NewMessageHandler(messaging),
	}, accounts)

	return &testServer{router: router, editor: editor}
}

// do sends a JSON request with an optional bearer token.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its bearer token.
func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"password": "rahasia123",
		"name":     "Nama " + username,
		"email":    username + "@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Session.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
