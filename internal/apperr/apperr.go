// Package apperr defines the error taxonomy shared by every layer and the
// mapping of those errors onto HTTP responses
package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrMalformedToken     = errors.New("missing or malformed authorization token")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateKey       = errors.New("username, email or student ID already exists")
	ErrUnsupportedType    = errors.New("unsupported file type")
	ErrPayloadTooLarge    = errors.New("file too large")
	ErrNotFound           = errors.New("material not found")
	ErrStoreFailure       = errors.New("storage failure")
)

// Status returns the HTTP status code an error should be reported with.
// Anything outside the taxonomy is treated as a store failure.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrDuplicateKey),
		errors.Is(err, ErrUnsupportedType),
		errors.Is(err, ErrPayloadTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrMalformedToken),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text that is safe to show to a client
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return "Internal server error"
	}

	return err.Error()
}

// Abort stops the gin chain and writes the error body. Server side failures
// are logged with the request ID so they can be matched to the response.
func Abort(c *gin.Context, err error) {
	requestID := c.GetString("requestID")
	code := Status(err)

	if code == http.StatusInternalServerError {
		zap.L().Error("Request failed", zap.String("requestID", requestID), zap.Error(err))
	}

	c.AbortWithStatusJSON(code, gin.H{
		"error":     Message(err),
		"requestID": requestID,
	})
}
