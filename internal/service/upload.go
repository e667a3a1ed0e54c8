package service

import (
	"campusshare/api/internal/apperr"
	"campusshare/api/internal/model"
	"campusshare/api/internal/storage"
	"campusshare/api/pkg/validators"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"go.uber.org/zap"
)

const compensateTimeout = 30 * time.Second

type materialInserter interface {
	Insert(ctx context.Context, m *model.Material) error
}

type UploadInput struct {
	UserID      uint
	Title       string
	CourseName  string
	Year        string
	Semester    string
	Description string
	Files       []*multipart.FileHeader
}

// Uploader stores a file and its catalog row. There is no transaction across
// the two, if the row can't be written the blob is deleted again.
type Uploader struct {
	Blobs   storage.BlobStore
	Catalog materialInserter
	Log     *zap.Logger
}

func NewUploader(b storage.BlobStore, c materialInserter) *Uploader {
	return &Uploader{
		Blobs:   b,
		Catalog: c,
		Log:     zap.L(),
	}
}

// Do runs the whole upload. Validation failures return before a single byte
// is written.
func (u *Uploader) Do(ctx context.Context, in *UploadInput) (*model.Material, error) {
	err := validators.RequiredFields(
		"course name", in.CourseName,
		"year", in.Year,
		"semester", in.Semester,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	switch {
	case len(in.Files) == 0:
		return nil, fmt.Errorf("%w: no file uploaded", apperr.ErrValidation)
	case len(in.Files) > 1:
		return nil, fmt.Errorf("%w: exactly one file must be uploaded", apperr.ErrValidation)
	}

	fh := in.Files[0]

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open multipart file, %v", apperr.ErrStoreFailure, err)
	}
	defer f.Close()

	blob, err := u.Blobs.Put(ctx, f, fh.Size, fh.Filename)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = fh.Filename
	}

	m := &model.Material{
		Title:        title,
		OriginalName: fh.Filename,
		Filename:     blob.Name,
		Filepath:     blob.Path,
		Filetype:     blob.Ext,
		ContentType:  blob.ContentType,
		Course:       strings.TrimSpace(in.CourseName),
		Year:         strings.TrimSpace(in.Year),
		Semester:     strings.TrimSpace(in.Semester),
		Description:  strings.TrimSpace(in.Description),
		UploaderID:   &in.UserID,
		Size:         FormatSize(blob.Size),
		SizeBytes:    blob.Size,
	}

	if err := u.Catalog.Insert(ctx, m); err != nil {
		u.compensate(blob)

		if !errors.Is(err, apperr.ErrStoreFailure) {
			err = fmt.Errorf("%w: %v", apperr.ErrStoreFailure, err)
		}

		return nil, err
	}

	return m, nil
}

// compensate removes a blob whose catalog row could not be written. The
// request context may already be gone so it gets its own. A failure here is
// logged and never replaces the original error.
func (u *Uploader) compensate(b *storage.Blob) {
	ctx, cancel := context.WithTimeout(context.Background(), compensateTimeout)
	defer cancel()

	if err := u.Blobs.Delete(ctx, b.Path); err != nil {
		u.Log.Error("Failed to cleanup after failed upload", zap.String("path", b.Path), zap.Error(err))
		return
	}

	u.Log.Debug("Cleaned up after failed upload", zap.String("path", b.Path))
}

// FormatSize renders a byte count the way listings show it, e.g. "12.34 KB"
func FormatSize(n int64) string {
	return fmt.Sprintf("%.2f KB", float64(n)/1024)
}
