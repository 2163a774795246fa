package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meeting-slot-api/core/logger"
	"meeting-slot-api/core/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"
)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// ObjectPutter is the part of the S3 client the store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	client ObjectPutter
	bucket string
	now    func() time.Time
}

func NewS3Store(cfg S3Config) *Store {
	opts := s3.Options{
		Region: cfg.Region,
	}
	if cfg.AccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		// S3-compatible stores such as MinIO
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return NewStore(s3.New(opts), cfg.Bucket)
}

func NewStore(client ObjectPutter, bucket string) *Store {
	return &Store{client: client, bucket: bucket, now: time.Now}
}

// PutJSON uploads value as JSON under key.
func (s *Store) PutJSON(ctx context.Context, key string, value any) error {
	body, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	logger.Debug("Storage:PutJSON:Success", "bucket", s.bucket, "key", key, "bytes", len(body))
	return nil
}

// TraceKey builds traces/<yyyy-mm-dd>/<slug(subject)>-<id>.json
func (s *Store) TraceKey(subject string) string {
	name := slug.Make(subject)
	if name == "" {
		name = "untitled"
	}
	if len(name) > 60 {
		name = name[:60]
	}
	return fmt.Sprintf("traces/%s/%s-%s.json", s.now().UTC().Format(time.DateOnly), name, utils.GenerateID())
}

// ArchiveJSON stores value under a fresh trace key and returns the key.
func (s *Store) ArchiveJSON(ctx context.Context, subject string, value any) (string, error) {
	key := s.TraceKey(subject)
	if err := s.PutJSON(ctx, key, value); err != nil {
		return "", err
	}
	return key, nil
}
