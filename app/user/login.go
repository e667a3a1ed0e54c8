package user

import (
	"campusshare/api/internal"
	"campusshare/api/internal/apperr"
	"campusshare/api/pkg/validators"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, fmt.Errorf("%w: invalid request body", apperr.ErrValidation))
		return
	}

	if err := validators.RequiredFields("username", data.Username, "password", data.Password); err != nil {
		apperr.Abort(c, fmt.Errorf("%w: %v", apperr.ErrValidation, err))
		return
	}

	user, err := d.Users.Authenticate(c.Request.Context(), data.Username, data.Password)
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	token, err := d.Tokens.Issue(user.ID)
	if err != nil {
		apperr.Abort(c, fmt.Errorf("failed to issue session token, %w", err))
		return
	}

	setAuthCookie(c, token, d)
	c.JSON(http.StatusOK, authResponse{
		Token: token,
		User:  user.Profile(),
	})
}

// setAuthCookie stores the token for browser clients that don't keep it
// themselves. It lives exactly as long as the token.
func setAuthCookie(c *gin.Context, token string, d *internal.Deps) {
	secure := c.Request.TLS != nil
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("auth_token", token, int(d.Tokens.TTL().Seconds()), "/", "", secure, true)
}
