// internal/config/s3.go
package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 configuration
type S3Config struct {
	Client        *s3.Client
	Bucket        string
	PublicBaseURL string
}

// NewS3Config builds a client from static credentials when they are set and
// from the default AWS chain otherwise.
func NewS3Config(ctx context.Context, s S3Settings) (*S3Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.Region)}
	if s.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	publicBaseURL := s.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = "https://" + s.Bucket + ".s3." + s.Region + ".amazonaws.com"
	}
	return &S3Config{
		Client:        s3.NewFromConfig(cfg),
		Bucket:        s.Bucket,
		PublicBaseURL: publicBaseURL,
	}, nil
}
