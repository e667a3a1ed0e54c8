package app

import (
	"campusshare/api/aws"
	"campusshare/api/db"
	"campusshare/api/internal"
	"campusshare/api/internal/service"
	"campusshare/api/internal/storage"
	"campusshare/api/pkg/security"
	"context"
	"fmt"

	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewDeps opens the stores named in the configuration and builds the services on top
func NewDeps(ctx context.Context) (*internal.Deps, error) {
	conn, err := db.New(db.Config{
		Driver: v.GetString("db.driver"),
		DSN:    v.GetString("db.dsn"),
		Reset:  v.GetBool("db.reset"),
		LogSQL: v.GetString("app.log_level") == "debug",
	})
	if err != nil {
		return nil, err
	}

	blobs, err := newBlobStore(ctx)
	if err != nil {
		return nil, err
	}

	d := &internal.Deps{
		DB:     conn,
		Argon:  security.New(),
		Tokens: security.NewTokenIssuer(v.GetString("jwt.secret"), v.GetDuration("jwt.ttl")),
		Blobs:  blobs,
	}

	d.Users = service.NewCredentialStore(conn, d.Argon)
	d.Catalog = service.NewCatalog(conn)
	d.Uploader = service.NewUploader(blobs, d.Catalog)
	d.Gateway = service.NewGateway(d.Catalog, blobs)

	if v.GetBool("app.seed_demo") {
		if err := d.Users.SeedDemo(ctx); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func newBlobStore(ctx context.Context) (storage.BlobStore, error) {
	limits := storage.Limits{
		MaxSize:      v.GetInt64("upload.max_size"),
		AllowedTypes: v.GetStringSlice("upload.allowed_types"),
	}

	switch t := v.GetString("storage.type"); t {
	case "local":
		s, err := storage.NewLocal(v.GetString("upload.dir"), limits)
		if err != nil {
			return nil, err
		}

		zap.L().Info("Storing uploads on disk", zap.String("dir", s.Dir()))
		return s, nil
	case "s3":
		c, err := aws.NewS3(ctx, aws.Config{
			AccessKey:       v.GetString("aws.access_key_id"),
			SecretAccessKey: v.GetString("aws.secret_access_key"),
			Region:          v.GetString("aws.region"),
			Bucket:          v.GetString("aws.bucket"),
			Endpoint:        v.GetString("aws.endpoint"),
			PathStyle:       v.GetBool("aws.path_style"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		zap.L().Info("Storing uploads in S3", zap.String("bucket", v.GetString("aws.bucket")))
		return storage.NewS3(c, limits), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", t)
	}
}

// RouterOptions reads the HTTP related settings
func RouterOptions() Options {
	return Options{
		CORSOrigins:    v.GetStringSlice("host.cors"),
		RateLimit:      v.GetInt("security.rate_limit"),
		RateWindow:     v.GetDuration("security.rate_window"),
		PublicCacheTTL: v.GetDuration("cache.public_ttl"),
		MaxUploadSize:  v.GetInt64("upload.max_size"),
	}
}
