package middleware

import (
	"campusshare/api/internal/apperr"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimiter caps the request body at maxBytes. Handlers see a
// *http.MaxBytesError once the cap is hit while reading.
func BodySizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fast reject for requests that announce their size
		if c.Request.ContentLength > maxBytes {
			apperr.Abort(c, fmt.Errorf("%w: request body exceeds %d bytes", apperr.ErrPayloadTooLarge, maxBytes))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
