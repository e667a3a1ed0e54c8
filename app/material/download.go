package material

import (
	"campusshare/api/internal"
	"campusshare/api/internal/apperr"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const fallbackContentType = "application/octet-stream"

// MaterialDownload streams a material as an attachment. The public and the
// authenticated route both end up here, only the middleware differs.
func MaterialDownload(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		// There is no material behind an id that doesn't parse
		apperr.Abort(c, apperr.ErrNotFound)
		return
	}

	dl, err := d.Gateway.Open(c.Request.Context(), uint(id))
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	defer dl.Object.Body.Close()

	contentType := dl.Material.ContentType
	if contentType == "" {
		contentType = fallbackContentType
	}

	name := dl.Material.OriginalName
	if name == "" {
		name = dl.Material.Filename
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		// Names mime refuses to encode still get a usable download
		disposition = mime.FormatMediaType("attachment", map[string]string{"filename": dl.Material.Filename})
	}

	zap.L().Debug("Serving material", zap.Uint("id", dl.Material.ID), zap.String("requestID", requestID))

	c.DataFromReader(http.StatusOK, dl.Object.Size, contentType, dl.Object.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}
