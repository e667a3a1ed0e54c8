package config

import (
	"testing"
	"time"

	v "github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, env map[string]string) error {
	t.Helper()

	v.Reset()
	t.Cleanup(v.Reset)
	t.Chdir(t.TempDir())

	for k, val := range env {
		t.Setenv(k, val)
	}

	return Setup(nil)
}

func TestSetupDefaults(t *testing.T) {
	require.NoError(t, setup(t, nil))

	require.Equal(t, 3000, v.GetInt("host.port"))
	require.Equal(t, []string{"*"}, v.GetStringSlice("host.cors"))
	require.EqualValues(t, 10<<20, v.GetInt64("upload.max_size"))
	require.Equal(t, 7*24*time.Hour, v.GetDuration("jwt.ttl"))
	require.Equal(t, 15*time.Minute, v.GetDuration("security.rate_window"))
	require.Equal(t, "local", v.GetString("storage.type"))
	require.True(t, v.GetBool("app.seed_demo"))
	require.False(t, v.GetBool("db.reset"))

	// Generated because none was configured
	require.Len(t, v.GetString("jwt.secret"), 128)
}

func TestSetupFromEnv(t *testing.T) {
	err := setup(t, map[string]string{
		"PORT":                 "8080",
		"JWT_SECRET":           "s3cret",
		"UPLOAD_MAX_SIZE":      "2",
		"UPLOAD_ALLOWED_TYPES": "PDF, .txt,,",
		"HOST_CORS":            "http://a.example, http://b.example",
		"APP_SEED_DEMO":        "false",
	})
	require.NoError(t, err)

	require.Equal(t, 8080, v.GetInt("host.port"))
	require.Equal(t, "s3cret", v.GetString("jwt.secret"))
	require.EqualValues(t, 2<<20, v.GetInt64("upload.max_size"))
	require.Equal(t, []string{"pdf", "txt"}, v.GetStringSlice("upload.allowed_types"))
	require.Equal(t, []string{"http://a.example", "http://b.example"}, v.GetStringSlice("host.cors"))
	require.False(t, v.GetBool("app.seed_demo"))
}

func TestSetupRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"log level", map[string]string{"APP_LOG_LEVEL": "loud"}, "invalid log level"},
		{"port", map[string]string{"HOST_PORT": "70000"}, "invalid port"},
		{"driver", map[string]string{"DB_DRIVER": "mysql"}, "invalid database driver"},
		{"max size", map[string]string{"UPLOAD_MAX_SIZE": "0"}, "upload.max_size"},
		{"s3 without bucket", map[string]string{"STORAGE_TYPE": "s3"}, "bucket can't be empty"},
		{"storage type", map[string]string{"STORAGE_TYPE": "ftp"}, "invalid storage type"},
		{"rate window", map[string]string{"SECURITY_RATE_WINDOW": "-1s"}, "rate_window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := setup(t, tt.env)
			require.ErrorContains(t, err, tt.want)
		})
	}
}
