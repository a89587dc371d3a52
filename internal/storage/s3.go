package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"fasplanners/internal/config"
	"fasplanners/internal/metrics"
	"fasplanners/pkg/eventapi"
	apperrors "fasplanners/pkg/errors"
)

const keyPrefix = "inspiration"

// ObjectAPI is the part of the S3 client used by S3Store
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store uploads images to an S3 compatible bucket and keeps only a reference
type S3Store struct {
	client        ObjectAPI
	bucket        string
	publicBaseURL string
	maxBytes      int
}

// NewS3Store creates an S3Store using client
func NewS3Store(client ObjectAPI, bucket, publicBaseURL string, maxBytes int) *S3Store {
	return &S3Store{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxBytes:      maxBytes,
	}
}

// NewS3Client builds an S3 client with static credentials and an optional
// custom endpoint (Tigris, R2, MinIO).
func NewS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// New returns the image store selected by cfg
func New(ctx context.Context, cfg config.StorageConfig, maxBytes int) (ImageStore, error) {
	if !cfg.Enabled {
		return NewInlineStore(maxBytes), nil
	}
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("component", "storage").Str("bucket", cfg.Bucket).Msg("Inspiration images stored in S3")
	return NewS3Store(client, cfg.Bucket, cfg.PublicBaseURL, maxBytes), nil
}

// Put uploads img and returns a reference without the inline data
func (s *S3Store) Put(ctx context.Context, img eventapi.InspirationImage) (eventapi.InspirationImage, error) {
	du, err := decodeImage(img, s.maxBytes)
	if err != nil {
		return eventapi.InspirationImage{}, err
	}

	key := path.Join(keyPrefix, uuid.NewString(), sanitizeName(img.Name))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(du.Data),
		ContentType:   aws.String(du.MediaType),
		ContentLength: aws.Int64(int64(len(du.Data))),
	})
	if err != nil {
		return eventapi.InspirationImage{}, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to upload inspiration image", err)
	}
	metrics.RecordImageStored("s3")
	log.Debug().Str("component", "storage").Str("key", key).Int("bytes", len(du.Data)).Msg("Uploaded inspiration image")

	ref := eventapi.InspirationImage{
		Name: img.Name,
		Type: du.MediaType,
		Key:  key,
	}
	if s.publicBaseURL != "" {
		ref.URL = s.publicBaseURL + "/" + key
	}
	return ref, nil
}

// Delete removes the object behind ref. References without a key are ignored.
func (s *S3Store) Delete(ctx context.Context, ref eventapi.InspirationImage) error {
	if ref.Key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to delete inspiration image", err)
	}
	log.Debug().Str("component", "storage").Str("key", ref.Key).Msg("Deleted inspiration image")
	return nil
}

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), ".-")
	if out == "" {
		return "image"
	}
	return out
}
