// Package storage uploads rendered QR images to S3 and hands out
// time-limited download links.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/mapease/checkin-service/internal/config"
)

const (
	// FolderQR is the S3 prefix for QR images.
	FolderQR       = "qr"
	pngContentType = "image/png"
)

// QRKey returns the object key for a registration's image: qr/{event_id}/{registration_id}-{issued_ms}.png.
// Reissuing a token writes a new object rather than overwriting the old one.
func QRKey(eventID, registrationID string, issuedAtMillis int64) string {
	return path.Join(FolderQR, path.Base(eventID), fmt.Sprintf("%s-%d.png", path.Base(registrationID), issuedAtMillis))
}

// S3 stores QR images in one bucket.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
	cfg      config.S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client. Static credentials from config are preferred;
// otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (*S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
		logger.Info("S3 client using configured credentials", zap.String("region", cfg.Region), zap.String("bucket", cfg.Bucket))
	} else {
		logger.Warn("S3 client using default credential chain")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &S3{
		client:   client,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Bucket returns the configured bucket.
func (s *S3) Bucket() string { return s.cfg.Bucket }

// PutPNG uploads a PNG under key and returns a presigned GET URL for it.
func (s *S3) PutPNG(ctx context.Context, key string, png []byte) (string, error) {
	size := int64(len(png))
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(png),
		ContentType:   aws.String(pngContentType),
		ContentLength: &size,
	})
	if err != nil {
		return "", fmt.Errorf("upload qr image: %w", err)
	}
	return s.PresignedURL(ctx, key)
}

// PresignedURL returns a GET URL for key valid for the configured duration.
func (s *S3) PresignedURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.PresignExpire()
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// PresignExpire returns the configured presign duration.
func (s *S3) PresignExpire() time.Duration {
	return s.cfg.PresignExpire()
}
