package storage

import (
	a "campusshare/api/aws"
	"campusshare/api/internal/apperr"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type s3Call struct {
	method      string
	path        string
	hasDeadline bool
}

// fakeS3 answers the SDK's HTTP requests. Uploads always fail, deletes succeed
// and everything else is a missing key.
type fakeS3 struct {
	mu    sync.Mutex
	calls []s3Call
}

func (f *fakeS3) Do(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		io.Copy(io.Discard, req.Body)
		req.Body.Close()
	}

	_, hasDeadline := req.Context().Deadline()

	f.mu.Lock()
	f.calls = append(f.calls, s3Call{req.Method, req.URL.Path, hasDeadline})
	f.mu.Unlock()

	switch req.Method {
	case http.MethodPut:
		return xmlResponse(req, http.StatusInternalServerError, "<Error><Code>InternalError</Code><Message>boom</Message></Error>"), nil
	case http.MethodDelete:
		return xmlResponse(req, http.StatusNoContent, ""), nil
	default:
		return xmlResponse(req, http.StatusNotFound, "<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>"), nil
	}
}

func (f *fakeS3) deletes() []s3Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []s3Call{}
	for _, c := range f.calls {
		if c.method == http.MethodDelete {
			out = append(out, c)
		}
	}
	return out
}

func xmlResponse(req *http.Request, code int, body string) *http.Response {
	return &http.Response{
		StatusCode:    code,
		Status:        http.StatusText(code),
		Header:        http.Header{"Content-Type": []string{"application/xml"}},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func newFakeS3Store(t *testing.T) (*S3, *fakeS3) {
	t.Helper()

	f := &fakeS3{}
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String("http://s3.test"),
		UsePathStyle: true,
		Credentials:  aws.AnonymousCredentials{},
		HTTPClient:   f,
		Retryer:      aws.NopRetryer{},
	})

	return NewS3(&a.S3Client{C: client, Bucket: aws.String("materials")}, DefaultLimits()), f
}

func TestS3PutFailureCleansUpWithDeadline(t *testing.T) {
	s, f := newFakeS3Store(t)
	content := "%PDF-1.4\nnotes"

	_, err := s.Put(context.Background(), strings.NewReader(content), int64(len(content)), "notes.pdf")
	require.ErrorIs(t, err, apperr.ErrStoreFailure)

	deletes := f.deletes()
	require.Len(t, deletes, 1)
	require.True(t, strings.HasPrefix(deletes[0].path, "/materials/"))
	require.True(t, strings.HasSuffix(deletes[0].path, ".pdf"))
	require.True(t, deletes[0].hasDeadline)
}

func TestS3CleanupOutlivesCancelledRequest(t *testing.T) {
	s, f := newFakeS3Store(t)
	content := "%PDF-1.4\nnotes"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Put(ctx, strings.NewReader(content), int64(len(content)), "notes.pdf")
	require.Error(t, err)

	deletes := f.deletes()
	require.Len(t, deletes, 1)
	require.True(t, deletes[0].hasDeadline)
}

func TestS3RejectsBeforeContactingBucket(t *testing.T) {
	s, f := newFakeS3Store(t)

	_, err := s.Put(context.Background(), strings.NewReader("MZ"), 2, "setup.exe")
	require.ErrorIs(t, err, apperr.ErrUnsupportedType)
	require.Empty(t, f.calls)
}

func TestS3OpenMissing(t *testing.T) {
	s, _ := newFakeS3Store(t)

	_, err := s.Open(context.Background(), "1718000000000000000-1.pdf")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
