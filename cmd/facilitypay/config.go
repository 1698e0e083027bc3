package main

import (
	"context"
	"fmt"

	"facilitypay/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.SessionSecret == "" {
		return nil, fmt.Errorf("set SESSION_SECRET (openssl rand -base64 32)")
	}

	if c.CookieHashKey == "" || c.CookieBlockKey == "" {
		return nil, fmt.Errorf("set COOKIE_HASH_KEY and COOKIE_BLOCK_KEY (openssl rand -base64 32)")
	}

	switch c.StorageBackend {
	case "local":
		if c.DataDir == "" {
			return nil, fmt.Errorf("set DATA_DIR for the local storage backend")
		}
	case "s3":
		if c.S3Bucket == "" {
			return nil, fmt.Errorf("set S3_BUCKET for the s3 storage backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q, expected local or s3", c.StorageBackend)
	}

	return c, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return awsConfig, nil
}
