package middleware

import (
	"campusshare/api/internal/apperr"
	"campusshare/api/internal/model"
	"campusshare/api/pkg/security"
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type userFinder interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// tokenFromRequest prefers the Authorization header and falls back to the
// auth_token cookie
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}

		return strings.TrimSpace(token)
	}

	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}

	return ""
}

// NewJWTMiddleware verifies the session token and loads its user on every
// request. A valid token for a deleted user is rejected.
func NewJWTMiddleware(tokens *security.TokenIssuer, users userFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")
		tokenStr := tokenFromRequest(c)

		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			zap.L().Debug("Rejected session token", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, err)
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			apperr.Abort(c, err)
			return
		}

		c.Set("session", &model.Session{
			User:  user,
			Token: tokenStr,
		})
		c.Set("userID", strconv.FormatUint(uint64(user.ID), 10))
		c.Next()
	}
}

// Session returns the session set by the JWT middleware. Only call it on
// routes that use the middleware.
func Session(c *gin.Context) *model.Session {
	return c.MustGet("session").(*model.Session)
}
