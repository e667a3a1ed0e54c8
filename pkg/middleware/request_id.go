// Package middleware contains any custom middleware used in the app
package middleware

import (
	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const requestIDLength = 12

// NewRequestIDMiddleware returns a new middleware function that generates a request ID for
// each incoming request, sets it as requestID and echoes it in the X-Request-ID header
func NewRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := gonanoid.New(requestIDLength)
		if err != nil {
			zap.L().Error("Failed to generate request ID", zap.Error(err))
			id = "unknown"
		}

		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
