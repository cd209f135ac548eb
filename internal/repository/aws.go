package repository

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"imagevault/internal/config"
)

// ErrNotFound is returned when a metadata record does not exist.
var ErrNotFound = errors.New("record not found")

// NewAWSConfig builds the SDK configuration shared by the S3 and DynamoDB
// clients. A non-empty endpoint switches to static credentials, which is how
// LocalStack and MinIO are addressed.
func NewAWSConfig(ctx context.Context, cfg *config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.Endpoint != "" {
		opts = append(opts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)),
		)
	}

	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

func NewS3Client(awsCfg aws.Config, cfg *config.AWSConfig) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
}

func NewDynamoDBClient(awsCfg aws.Config, cfg *config.AWSConfig) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
}
