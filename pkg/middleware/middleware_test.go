package middleware

import (
	"campusshare/api/internal/apperr"
	"campusshare/api/internal/model"
	"campusshare/api/pkg/security"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers map[uint]*model.User

func (f fakeUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	return u, nil
}

func protectedEngine(tokens *security.TokenIssuer, users userFinder) *gin.Engine {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.GET("/me", NewJWTMiddleware(tokens, users), func(c *gin.Context) {
		s := Session(c)
		c.JSON(http.StatusOK, gin.H{"username": s.User.Username, "userID": c.GetString("userID")})
	})
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJWTMiddleware(t *testing.T) {
	tokens := security.NewTokenIssuer("secret", time.Hour)
	users := fakeUsers{7: {ID: 7, Username: "student123"}}
	r := protectedEngine(tokens, users)

	valid, err := tokens.Issue(7)
	require.NoError(t, err)
	orphan, err := tokens.Issue(8)
	require.NoError(t, err)
	foreign, err := security.NewTokenIssuer("other", time.Hour).Issue(7)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		cookie string
		code   int
	}{
		{"bearer", "Bearer " + valid, "", http.StatusOK},
		{"lowercase scheme", "bearer " + valid, "", http.StatusOK},
		{"cookie fallback", "", valid, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, "", http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, "", http.StatusUnauthorized},
		{"deleted user", "Bearer " + orphan, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "auth_token", Value: tt.cookie})
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tt.code, w.Code)

			body := decode(t, w)
			if tt.code == http.StatusOK {
				require.Equal(t, "student123", body["username"])
				require.Equal(t, "7", body["userID"])
				return
			}

			require.NotEmpty(t, body["error"])
			require.Equal(t, w.Header().Get("X-Request-ID"), body["requestID"])
		})
	}
}

func TestRequestIDIsUnique(t *testing.T) {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("requestID")) })

	seen := map[string]struct{}{}
	for range 20 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Len(t, w.Body.String(), requestIDLength)
		seen[w.Body.String()] = struct{}{}
	}
	require.Len(t, seen, 20)
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := gin.New()
	r.Use(RateLimiterMiddleware(ctx, RateLimiterConfig{Requests: 3, Window: time.Hour}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for range 3 {
		require.Equal(t, http.StatusOK, do("10.0.0.1"))
	}
	require.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))

	// Other clients have their own bucket
	require.Equal(t, http.StatusOK, do("10.0.0.2"))
}

func TestBodySizeLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/", BodySizeLimiter(8), func(c *gin.Context) {
		_, err := c.GetRawData()
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("much too long")))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decode(t, w)["error"], "file too large")

	// Unknown length is caught while reading
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("much too long"))
	req.ContentLength = -1

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
