package material

import (
	"campusshare/api/internal"
	"campusshare/api/internal/apperr"
	"campusshare/api/internal/service"
	"campusshare/api/pkg/middleware"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func formValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}

	return ""
}

func MaterialUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	session := middleware.Session(c)

	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apperr.Abort(c, fmt.Errorf("%w: request body exceeds %d bytes", apperr.ErrPayloadTooLarge, maxErr.Limit))
			return
		}

		zap.L().Debug("Can't parse multipart form", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, fmt.Errorf("%w: expected a multipart form", apperr.ErrValidation))
		return
	}
	// Drops the temp files multipart spills to disk
	defer form.RemoveAll()

	for field := range form.File {
		if field != "file" {
			apperr.Abort(c, fmt.Errorf("%w: unexpected file field %q", apperr.ErrValidation, field))
			return
		}
	}

	m, err := d.Uploader.Do(c.Request.Context(), &service.UploadInput{
		UserID:      session.UserID(),
		Title:       formValue(form.Value, "title"),
		CourseName:  formValue(form.Value, "courseName"),
		Year:        formValue(form.Value, "year"),
		Semester:    formValue(form.Value, "semester"),
		Description: formValue(form.Value, "description"),
		Files:       form.File["file"],
	})
	if err != nil {
		apperr.Abort(c, err)
		return
	}

	zap.L().Info("Material uploaded",
		zap.Uint("id", m.ID),
		zap.String("file", m.Filename),
		zap.Int64("size", m.SizeBytes),
		zap.String("requestID", requestID),
	)

	c.JSON(http.StatusOK, m.Result())
}
