// Package aws defines functions used to interact with the AWS API
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type Config struct {
	AccessKey       string
	SecretAccessKey string
	Region          string
	Bucket          string
	// Endpoint is set for S3 compatible providers like Cloudflare R2 or MinIO
	Endpoint  string
	PathStyle bool
}

type S3Client struct {
	C      *s3.Client
	Bucket *string
}

// NewS3 builds a client and makes sure the bucket is reachable before the
// server starts accepting uploads
func NewS3(ctx context.Context, c Config) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKey,
			c.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(c.Bucket)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = c.Region
		if o.Region == "" {
			o.Region = "auto"
		}

		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}

		o.UsePathStyle = c.PathStyle
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", c.Bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Client{
		C:      client,
		Bucket: bucket,
	}, nil
}
