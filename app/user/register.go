// Package user contains the account endpoints
package user

import (
	"campusshare/api/internal"
	"campusshare/api/internal/apperr"
	"campusshare/api/internal/model"
	"campusshare/api/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type authResponse struct {
	Token string        `json:"token"`
	User  model.Profile `json:"user"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data service.RegisterInput
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, fmt.Errorf("%w: invalid request body", apperr.ErrValidation))
		return
	}

	user, err := d.Users.Register(c.Request.Context(), &data)
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	token, err := d.Tokens.Issue(user.ID)
	if err != nil {
		apperr.Abort(c, fmt.Errorf("failed to issue session token, %w", err))
		return
	}

	zap.L().Info("User registered", zap.Uint("userID", user.ID), zap.String("requestID", requestID))

	setAuthCookie(c, token, d)
	c.JSON(http.StatusOK, authResponse{
		Token: token,
		User:  user.Profile(),
	})
}
