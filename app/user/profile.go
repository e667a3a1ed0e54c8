package user

import (
	"campusshare/api/pkg/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserProfile returns the user the session belongs to, loaded fresh by the
// JWT middleware
func UserProfile(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.Session(c).User.Profile())
}
