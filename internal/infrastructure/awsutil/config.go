// Package awsutil provides utilities for loading AWS configuration.
package awsutil

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config is an AWS configuration plus an optional endpoint override,
// e.g. http://localstack:4566.
type Config struct {
	AWS      aws.Config
	Endpoint string
}

// Load loads the AWS configuration. When endpoint is empty AWS_ENDPOINT_URL
// is consulted.
func Load(ctx context.Context, region, endpoint string) (Config, error) {
	if endpoint == "" {
		endpoint = os.Getenv("AWS_ENDPOINT_URL")
	}
	cfg, err := awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(region))
	return Config{AWS: cfg, Endpoint: endpoint}, err
}

// S3 builds an S3 client. Custom endpoints use path-style addressing.
func (c Config) S3() *s3.Client {
	return s3.NewFromConfig(c.AWS, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
}

// DynamoDB builds a DynamoDB client.
func (c Config) DynamoDB() *dynamodb.Client {
	return dynamodb.NewFromConfig(c.AWS, func(o *dynamodb.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	})
}
