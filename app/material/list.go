// Package material contains the endpoints that list, upload and serve study materials
package material

import (
	"campusshare/api/internal"
	"campusshare/api/internal/apperr"
	"campusshare/api/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func bindFilters(c *gin.Context) (service.Filters, bool) {
	var f service.Filters
	if err := c.ShouldBindQuery(&f); err != nil {
		apperr.Abort(c, fmt.Errorf("%w: invalid query, %v", apperr.ErrValidation, err))
		return f, false
	}

	return f, true
}

// MaterialListPublic is open to anyone and only returns summaries
func MaterialListPublic(c *gin.Context, d *internal.Deps) {
	f, ok := bindFilters(c)
	if !ok {
		return
	}

	out, err := d.Gateway.ListPublic(c.Request.Context(), f)
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func MaterialList(c *gin.Context, d *internal.Deps) {
	f, ok := bindFilters(c)
	if !ok {
		return
	}

	out, err := d.Gateway.ListFull(c.Request.Context(), f)
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}
