package storage

import (
	"bytes"
	"campusshare/api/internal/apperr"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	DefaultMaxSize = 10 << 20
	// Longest original name kept in the catalog and sent back on download
	maxNameLength = 255
)

var DefaultAllowedTypes = []string{"pdf", "doc", "docx", "ppt", "pptx", "txt", "zip", "rar", "jpg", "jpeg", "png", "gif"}

// Content that is refused even when it hides behind an allowed extension
var forbiddenMIME = []string{
	"application/vnd.microsoft.portable-executable",
	"application/x-msdownload",
	"application/x-elf",
	"application/x-executable",
	"application/x-sharedlib",
	"application/x-mach-binary",
}

type Limits struct {
	MaxSize      int64
	AllowedTypes []string
}

func DefaultLimits() Limits {
	return Limits{
		MaxSize:      DefaultMaxSize,
		AllowedTypes: DefaultAllowedTypes,
	}
}

// CheckName returns the lowercase extension of name if it's on the allow-list
func (l Limits) CheckName(name string) (string, error) {
	if len(name) > maxNameLength {
		return "", fmt.Errorf("%w: file name is too long", apperr.ErrValidation)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" || !slices.Contains(l.AllowedTypes, ext) {
		return "", fmt.Errorf("%w: .%s files are not accepted", apperr.ErrUnsupportedType, ext)
	}

	return ext, nil
}

func (l Limits) CheckSize(size int64) error {
	if size > l.MaxSize {
		return fmt.Errorf("%w: maximum is %d bytes", apperr.ErrPayloadTooLarge, l.MaxSize)
	}

	return nil
}

// limitedReader fails with ErrPayloadTooLarge as soon as more than max bytes
// were read, so oversized bodies are cut off while streaming
type limitedReader struct {
	r    io.Reader
	left int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.left < 0 {
		return 0, apperr.ErrPayloadTooLarge
	}

	if int64(len(p)) > l.left+1 {
		p = p[:l.left+1]
	}

	n, err := l.r.Read(p)
	l.left -= int64(n)
	if l.left < 0 {
		return n, apperr.ErrPayloadTooLarge
	}

	return n, err
}

func (l Limits) reader(r io.Reader) io.Reader {
	return &limitedReader{r: r, left: l.MaxSize}
}

// sniff detects the content type from the head of r and returns a reader that
// still yields the whole stream
func sniff(r io.Reader) (*mimetype.MIME, io.Reader, error) {
	head := make([]byte, 3072)

	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, nil, fmt.Errorf("failed to read file header, %w", err)
	}
	head = head[:n]

	mime := mimetype.Detect(head)
	for m := mime; m != nil; m = m.Parent() {
		for _, f := range forbiddenMIME {
			if m.Is(f) {
				return nil, nil, fmt.Errorf("%w: executable content", apperr.ErrUnsupportedType)
			}
		}
	}

	return mime, io.MultiReader(bytes.NewReader(head), r), nil
}
