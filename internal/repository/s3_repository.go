package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"imagevault/internal/config"
)

// S3Repository issues presigned URLs and manages stored objects. File bytes
// never pass through the service, so there are no upload or download streams
// here.
type S3Repository interface {
	PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
	HeadObject(ctx context.Context, key string) (size int64, exists bool, err error)
}

type s3Repository struct {
	client  *s3.Client
	presign *s3.PresignClient
	cfg     *config.S3Config
	log     *zap.Logger
}

func NewS3Repository(client *s3.Client, cfg *config.S3Config, log *zap.Logger) S3Repository {
	repo := &s3Repository{
		client:  client,
		presign: s3.NewPresignClient(client),
		cfg:     cfg,
		log:     log,
	}

	if cfg.AutoCreate {
		if err := repo.ensureBucketExists(context.Background()); err != nil {
			log.Warn("Failed to ensure bucket exists", zap.Error(err))
		}
	}

	return repo
}

func (r *s3Repository) ensureBucketExists(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.cfg.Bucket),
	})
	if err == nil {
		return nil
	}

	r.log.Info("Creating bucket", zap.String("bucket", r.cfg.Bucket))

	_, err = r.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(r.cfg.Bucket),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return err
	}

	r.log.Info("Bucket created", zap.String("bucket", r.cfg.Bucket))
	return nil
}

func (r *s3Repository) PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	req, err := r.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		r.log.Error("Failed to presign upload",
			zap.String("key", key),
			zap.Error(err))
		return "", err
	}

	r.log.Info("Presigned upload URL generated",
		zap.String("key", key),
		zap.Duration("expiry", expiry))

	return req.URL, nil
}

func (r *s3Repository) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		r.log.Error("Failed to presign download",
			zap.String("key", key),
			zap.Error(err))
		return "", err
	}

	r.log.Info("Presigned download URL generated",
		zap.String("key", key),
		zap.Duration("expiry", expiry))

	return req.URL, nil
}

func (r *s3Repository) DeleteObject(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		r.log.Error("Failed to delete object",
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	r.log.Info("Object deleted", zap.String("key", key))
	return nil
}

func (r *s3Repository) HeadObject(ctx context.Context, key string) (int64, bool, error) {
	out, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return 0, false, nil
		}
		r.log.Error("Failed to head object",
			zap.String("key", key),
			zap.Error(err))
		return 0, false, err
	}

	return aws.ToInt64(out.ContentLength), true, nil
}
