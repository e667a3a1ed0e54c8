package storage

import (
	"campusshare/api/internal/apperr"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Local keeps blobs in a single directory on disk
type Local struct {
	dir    string
	limits Limits
	now    func() time.Time
}

// NewLocal creates the upload directory if it doesn't exist yet
func NewLocal(dir string, l Limits) (*Local, error) {
	dir = filepath.Clean(dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory, %w", err)
	}

	return &Local{
		dir:    dir,
		limits: l,
		now:    time.Now,
	}, nil
}

func (s *Local) Dir() string {
	return s.dir
}

func (s *Local) Put(ctx context.Context, r io.Reader, size int64, originalName string) (*Blob, error) {
	ext, err := s.limits.CheckName(originalName)
	if err != nil {
		return nil, err
	}

	if err := s.limits.CheckSize(size); err != nil {
		return nil, err
	}

	mime, body, err := sniff(r)
	if err != nil {
		return nil, err
	}

	// Bytes go to a hidden temp file first so a half written upload never
	// shows up under a real stored name
	temp, err := os.CreateTemp(s.dir, ".upload-*.part")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create temporary file, %v", apperr.ErrStoreFailure, err)
	}
	defer os.Remove(temp.Name())

	n, err := io.Copy(temp, s.limits.reader(body))
	closeErr := temp.Close()
	if err != nil {
		if errors.Is(err, apperr.ErrPayloadTooLarge) {
			return nil, fmt.Errorf("%w: maximum is %d bytes", apperr.ErrPayloadTooLarge, s.limits.MaxSize)
		}

		return nil, fmt.Errorf("%w: failed to write upload, %v", apperr.ErrStoreFailure, err)
	}

	if closeErr != nil {
		return nil, fmt.Errorf("%w: failed to flush upload, %v", apperr.ErrStoreFailure, closeErr)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := StoredName(originalName, s.now())
	p := filepath.Join(s.dir, name)

	if err := os.Rename(temp.Name(), p); err != nil {
		return nil, fmt.Errorf("%w: failed to move upload into place, %v", apperr.ErrStoreFailure, err)
	}

	return &Blob{
		Name:        name,
		Path:        p,
		Ext:         ext,
		ContentType: mime.String(),
		Size:        n,
	}, nil
}

// resolve only ever looks inside the upload directory. Rows written by older
// deployments may carry absolute paths from another machine, the base name
// is what identifies the blob.
func (s *Local) resolve(p string) string {
	return filepath.Join(s.dir, filepath.Base(filepath.Clean(p)))
}

func (s *Local) Open(_ context.Context, p string) (*Object, error) {
	f, err := os.Open(s.resolve(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: blob %s is missing", apperr.ErrNotFound, filepath.Base(p))
		}

		return nil, fmt.Errorf("%w: failed to open blob, %v", apperr.ErrStoreFailure, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: failed to stat blob, %v", apperr.ErrStoreFailure, err)
	}

	if stat.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: blob %s is a directory", apperr.ErrNotFound, filepath.Base(p))
	}

	return &Object{
		Body: f,
		Size: stat.Size(),
	}, nil
}

func (s *Local) Delete(_ context.Context, p string) error {
	err := os.Remove(s.resolve(p))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}
