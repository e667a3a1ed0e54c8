package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"campusshare/api/internal/apperr"

	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T, l Limits) *Local {
	t.Helper()

	s, err := NewLocal(filepath.Join(t.TempDir(), "uploads"), l)
	require.NoError(t, err)
	return s
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestNewLocalCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewLocal(dir, DefaultLimits())
	require.NoError(t, err)

	stat, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, stat.IsDir())
}

func TestLocalPutAndOpen(t *testing.T) {
	s := newLocal(t, DefaultLimits())
	content := []byte("%PDF-1.4\nlecture notes")

	b, err := s.Put(context.Background(), bytes.NewReader(content), int64(len(content)), "Week 1 Notes.PDF")
	require.NoError(t, err)
	require.Equal(t, "pdf", b.Ext)
	require.Equal(t, "application/pdf", b.ContentType)
	require.Equal(t, int64(len(content)), b.Size)
	require.True(t, strings.HasSuffix(b.Name, ".PDF"))
	require.Equal(t, filepath.Join(s.Dir(), b.Name), b.Path)
	require.Equal(t, []string{b.Name}, listDir(t, s.Dir()))

	obj, err := s.Open(context.Background(), b.Path)
	require.NoError(t, err)
	defer obj.Body.Close()

	got, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.Equal(t, content, got)
	require.Equal(t, int64(len(content)), obj.Size)
}

func TestLocalPutRejectsUnsupportedType(t *testing.T) {
	s := newLocal(t, DefaultLimits())

	_, err := s.Put(context.Background(), strings.NewReader("MZ"), 2, "setup.exe")
	require.ErrorIs(t, err, apperr.ErrUnsupportedType)
	require.Empty(t, listDir(t, s.Dir()))

	_, err = s.Put(context.Background(), strings.NewReader("x"), 1, "README")
	require.ErrorIs(t, err, apperr.ErrUnsupportedType)
}

func TestLocalPutRejectsLongName(t *testing.T) {
	s := newLocal(t, DefaultLimits())

	_, err := s.Put(context.Background(), strings.NewReader("x"), 1, strings.Repeat("a", 300)+".txt")
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.Empty(t, listDir(t, s.Dir()))
}

func TestLocalPutRejectsExecutableContent(t *testing.T) {
	s := newLocal(t, DefaultLimits())
	elf := append([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1}, make([]byte, 64)...)

	_, err := s.Put(context.Background(), bytes.NewReader(elf), int64(len(elf)), "notes.pdf")
	require.ErrorIs(t, err, apperr.ErrUnsupportedType)
	require.Empty(t, listDir(t, s.Dir()))
}

func TestLocalPutRejectsDeclaredOversize(t *testing.T) {
	s := newLocal(t, DefaultLimits())

	r := &countingReader{r: strings.NewReader("never read")}
	_, err := s.Put(context.Background(), r, DefaultMaxSize+1, "big.pdf")
	require.ErrorIs(t, err, apperr.ErrPayloadTooLarge)
	require.Zero(t, r.n, "body must not be read when the declared size is too big")
	require.Empty(t, listDir(t, s.Dir()))
}

func TestLocalPutRejectsStreamedOversize(t *testing.T) {
	s := newLocal(t, Limits{MaxSize: 16, AllowedTypes: DefaultAllowedTypes})

	// Client lies about the size
	body := strings.Repeat("a", 64)
	_, err := s.Put(context.Background(), strings.NewReader(body), 8, "notes.txt")
	require.ErrorIs(t, err, apperr.ErrPayloadTooLarge)
	require.Empty(t, listDir(t, s.Dir()))
}

func TestLocalPutExactlyAtLimit(t *testing.T) {
	s := newLocal(t, Limits{MaxSize: 16, AllowedTypes: DefaultAllowedTypes})

	body := strings.Repeat("a", 16)
	b, err := s.Put(context.Background(), strings.NewReader(body), 16, "notes.txt")
	require.NoError(t, err)
	require.Equal(t, int64(16), b.Size)
}

func TestLocalOpenMissing(t *testing.T) {
	s := newLocal(t, DefaultLimits())

	_, err := s.Open(context.Background(), filepath.Join(s.Dir(), "nope.pdf"))
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.Open(context.Background(), "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLocalOpenStaysInsideDirectory(t *testing.T) {
	s := newLocal(t, DefaultLimits())

	outside := filepath.Join(filepath.Dir(s.Dir()), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o600))

	_, err := s.Open(context.Background(), filepath.Join(s.Dir(), "..", "secret.txt"))
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLocalDelete(t *testing.T) {
	s := newLocal(t, DefaultLimits())

	b, err := s.Put(context.Background(), strings.NewReader("hello"), 5, "a.txt")
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), b.Path))
	require.Empty(t, listDir(t, s.Dir()))

	// Deleting twice is fine
	require.NoError(t, s.Delete(context.Background(), b.Path))
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}
