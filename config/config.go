// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"campusshare/api/internal/storage"
	"campusshare/api/pkg/util"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	resetDB  = pflag.Bool("reset-db", false, "Deletes the SQLite database file before starting")
	seedDemo = pflag.Bool("seed-demo", true, "Creates the demo account if it doesn't exist")

	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "local"}
	validDrivers      = []string{"sqlite", "postgres"}
)

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup(args []string) error {
	if err := pflag.CommandLine.Parse(args); err != nil {
		return err
	}

	v.BindPFlag("db.reset", pflag.Lookup("reset-db"))
	v.BindPFlag("app.seed_demo", pflag.Lookup("seed-demo"))

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("host.port", "HOST_PORT", "PORT")
	v.BindEnv("jwt.secret", "JWT_SECRET", "SECURITY_JWT_SECRET")

	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	normalizeList("host.cors", strings.TrimSpace)
	normalizeList("upload.allowed_types", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	})

	if err := validate(); err != nil {
		return err
	}

	if v.GetString("jwt.secret") == "" {
		secret, err := util.GenerateToken(64)
		if err != nil {
			return fmt.Errorf("failed to generate JWT secret, %w", err)
		}

		// Tokens die with the process, fine for development only
		zap.L().Warn("No JWT secret set, generated a random one. Set JWT_SECRET to keep sessions across restarts")
		v.Set("jwt.secret", secret)
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}

// normalizeList turns comma separated strings from env vars into slices and
// cleans every entry with fn
func normalizeList(key string, fn func(string) string) {
	var raw []string

	switch val := v.Get(key).(type) {
	case string:
		raw = strings.Split(val, ",")
	default:
		raw = v.GetStringSlice(key)
	}

	out := []string{}
	for _, r := range raw {
		if r = fn(r); r != "" {
			out = append(out, r)
		}
	}

	v.Set(key, out)
}

func setDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 3000)
	v.SetDefault("host.cors", []string{"*"})

	v.SetDefault("jwt.ttl", "168h")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.sqlite")

	v.SetDefault("storage.type", "local")

	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size", storage.DefaultMaxSize>>20)
	v.SetDefault("upload.allowed_types", storage.DefaultAllowedTypes)

	v.SetDefault("aws.region", "auto")
	v.SetDefault("aws.path_style", false)

	v.SetDefault("security.rate_limit", 200)
	v.SetDefault("security.rate_window", "15m")

	v.SetDefault("cache.public_ttl", "10s")
}

func validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if p := v.GetInt("host.port"); p <= 0 || p > 65535 {
		return errors.New("invalid port provided")
	}

	if v.GetDuration("jwt.ttl") <= 0 {
		return errors.New("jwt.ttl must be a positive duration")
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if len(v.GetStringSlice("upload.allowed_types")) == 0 {
		return errors.New("upload.allowed_types can't be empty")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if v.GetDuration("security.rate_window") <= 0 {
		return errors.New("security.rate_window must be a positive duration")
	}

	switch v.GetString("storage.type") {
	case "s3":
		if v.GetString("aws.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
		if v.GetString("aws.access_key_id") == "" {
			return errors.New("access key id can't be empty")
		}
		if v.GetString("aws.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
	case "local":
		if v.GetString("upload.dir") == "" {
			return errors.New("upload.dir can't be empty")
		}
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	return nil
}
