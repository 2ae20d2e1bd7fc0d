package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taman-digital/internal/domain"
	"taman-digital/internal/logger"
	"taman-digital/internal/middleware"
	"taman-digital/internal/service"
	"taman-digital/internal/validator"
)

// TimeFormat is the standard time format for API responses (RFC3339)
const TimeFormat = time.RFC3339

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// SessionResponse carries the bearer token of a new session.
type SessionResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt string `json:"expires_at"`
}

func toSessionResponse(sess *domain.Session) SessionResponse {
	return SessionResponse{
		Token:     sess.ID,
		Username:  sess.Username,
		ExpiresAt: sess.ExpiresAt.Format(TimeFormat),
	}
}

// statusFor maps service errors to HTTP status codes. Zero means unexpected.
func statusFor(err error) int {
	switch {
	case validator.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSelfFollow):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrNothingToRecover):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrGeneratorUnavailable),
		errors.Is(err, service.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	}
	return 0
}

// respondError writes the response for err. Unexpected errors are logged
// and reported as "failed to <action>".
func respondError(c *gin.Context, err error, action string) {
	status := statusFor(err)
	switch {
	case status == http.StatusBadRequest && validator.IsValidationError(err):
		c.JSON(status, ErrorResponse{Error: "validation failed", Fields: validator.FieldErrors(err)})
	case status != 0:
		c.JSON(status, ErrorResponse{Error: err.Error()})
	default:
		logger.WithRequestID(middleware.GetRequestID(c)).ErrorContext(c.Request.Context(), "Request failed",
			slog.String("action", action),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to " + action})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
