package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taman-digital/internal/domain"
	"taman-digital/internal/logger"
)

const (
	// SessionKey is the context key for the resolved session
	SessionKey = "session"

	bearerPrefix = "Bearer "
)

// SessionResolver looks up a live session by id.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (*domain.Session, error)
}

// RequireSession rejects requests without a live bearer session.
func RequireSession(resolver SessionResolver) gin.HandlerFunc {
	return sessionMiddleware(resolver, true)
}

// OptionalSession resolves a bearer session when one is sent and lets
// anonymous requests through.
func OptionalSession(resolver SessionResolver) gin.HandlerFunc {
	return sessionMiddleware(resolver, false)
}

func sessionMiddleware(resolver SessionResolver, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session required"})
				return
			}
			c.Next()
			return
		}

		sess, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			logger.WithRequestID(GetRequestID(c)).ErrorContext(c.Request.Context(), "Failed to resolve session",
				slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve session"})
			return
		}
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired or unknown"})
			return
		}

		c.Set(SessionKey, sess)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
}

// GetSession returns the session resolved for this request, or nil.
func GetSession(c *gin.Context) *domain.Session {
	if v, exists := c.Get(SessionKey); exists {
		if sess, ok := v.(*domain.Session); ok {
			return sess
		}
	}
	return nil
}
