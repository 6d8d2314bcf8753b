package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	appcontext "github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

const (
	MINIO_SVC = "minio_svc"

	minioStartTimeout = 10 * time.Second
)

// ObjectStore keeps user media such as profile thumbnails.
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	DeleteFile(ctx context.Context, objectName string) error
}

type MinIOService struct {
	appcontext.DefaultService

	endpoint string
	bucket   string
	region   string
	options  *minio.Options
	client   *minio.Client
}

func (svc MinIOService) Id() string {
	return MINIO_SVC
}

func (svc *MinIOService) Configure(ctx *appcontext.Context) error {
	svc.endpoint = getEnv("MINIO_ENDPOINT", "localhost:9000")
	svc.bucket = getEnv("MINIO_BUCKET_NAME", "brushy-media")
	svc.region = os.Getenv("MINIO_REGION")
	svc.options = &minio.Options{
		Creds: credentials.NewStaticV4(
			getEnv("MINIO_ACCESS_KEY", "admin"),
			getEnv("MINIO_SECRET_KEY", "password123"),
			"",
		),
		Secure: os.Getenv("MINIO_USE_SSL") == "true",
		Region: svc.region,
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MinIOService) Start() error {
	client, err := minio.New(svc.endpoint, svc.options)
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}
	svc.client = client

	ctx, cancel := context.WithTimeout(context.Background(), minioStartTimeout)
	defer cancel()

	if err := svc.ensureBucket(ctx); err != nil {
		return err
	}

	log.WithFields(log.Fields{"endpoint": svc.endpoint, "bucket": svc.bucket}).Info("MinIO storage ready")
	return nil
}

func (svc *MinIOService) ensureBucket(ctx context.Context) error {
	exists, err := svc.client.BucketExists(ctx, svc.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", svc.bucket, err)
	}
	if exists {
		return nil
	}

	if err := svc.client.MakeBucket(ctx, svc.bucket, minio.MakeBucketOptions{Region: svc.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", svc.bucket, err)
	}
	log.WithField("bucket", svc.bucket).Info("Created MinIO bucket")
	return nil
}

func (svc *MinIOService) UploadFile(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	_, err := svc.client.PutObject(ctx, svc.bucket, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "private, max-age=86400",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return nil
}

// GetFileURL returns a presigned GET URL valid for expiry.
func (svc *MinIOService) GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := svc.client.PresignedGetObject(ctx, svc.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectName, err)
	}
	return u.String(), nil
}

func (svc *MinIOService) DeleteFile(ctx context.Context, objectName string) error {
	if err := svc.client.RemoveObject(ctx, svc.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", objectName, err)
	}
	return nil
}
