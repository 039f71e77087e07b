package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectAPI is the subset of *s3.Client the store needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps the snapshot as one object <prefix><key>.json.
type S3Store struct {
	api    ObjectAPI
	bucket string
	object string
}

// NewS3Store wraps a client.
func NewS3Store(api ObjectAPI, bucket, prefix, key string) *S3Store {
	if key == "" {
		key = DefaultKey
	}
	return &S3Store{api: api, bucket: bucket, object: prefix + key + ".json"}
}

// Load fetches the object body.
func (s *S3Store) Load(ctx context.Context) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.object),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("persistence/s3: get %s: %w", s.object, err)
	}
	defer out.Body.Close()
	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("persistence/s3: read %s: %w", s.object, err)
	}
	return payload, nil
}

// Save overwrites the object.
func (s *S3Store) Save(ctx context.Context, payload []byte) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.object),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("persistence/s3: put %s: %w", s.object, err)
	}
	return nil
}
