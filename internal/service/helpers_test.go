package service

import (
	"bytes"
	"campusshare/api/db"
	"campusshare/api/pkg/security"
	"fmt"
	"mime/multipart"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())

	conn, err := db.New(db.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)

	// A shared in-memory database locks whole tables, one connection avoids that
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return conn
}

// Cheap parameters, the real ones make the suite crawl
func testArgon() *security.ArgonHash {
	return &security.ArgonHash{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

type testFile struct {
	field   string
	name    string
	content []byte
}

// multipartFiles runs the files through a real multipart encoder and parser,
// the same way gin hands them to the handlers
func multipartFiles(t *testing.T, files ...testFile) map[string][]*multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)

		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	out := []string{}
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}
