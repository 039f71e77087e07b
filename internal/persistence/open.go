package persistence

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/odyssey-erp/stockroom/internal/platform/cache"
	"github.com/odyssey-erp/stockroom/internal/platform/db"
)

// Driver names accepted by Open.
const (
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverS3       = "s3"
)

// Options selects and configures a driver.
type Options struct {
	Driver   string
	Key      string
	FileDir  string
	Redis    cache.Options
	PgDSN    string
	MySQLDSN string
	S3       S3Options
}

// S3Options configures the object-store driver.
type S3Options struct {
	Bucket   string
	Region   string
	Endpoint string
	Key      string
	Secret   string
	Prefix   string
}

// Open builds the configured store. The returned close func releases any
// connection the driver opened.
func Open(ctx context.Context, opts Options) (Store, func(), error) {
	noop := func() {}
	switch opts.Driver {
	case DriverFile, "":
		store, err := NewFileStore(opts.FileDir, opts.Key)
		return store, noop, err
	case DriverRedis:
		client, err := cache.NewWithOptions(ctx, opts.Redis)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisStore(client, opts.Key), func() { _ = client.Close() }, nil
	case DriverPostgres:
		pool, err := db.New(ctx, opts.PgDSN)
		if err != nil {
			return nil, noop, err
		}
		store := NewPostgresStore(pool, opts.Key)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return store, pool.Close, nil
	case DriverMySQL:
		handle, err := db.OpenMySQL(ctx, opts.MySQLDSN)
		if err != nil {
			return nil, noop, err
		}
		store := NewMySQLStore(handle, opts.Key)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = handle.Close()
			return nil, noop, err
		}
		return store, func() { _ = handle.Close() }, nil
	case DriverS3:
		client, err := newS3Client(ctx, opts.S3)
		if err != nil {
			return nil, noop, err
		}
		return NewS3Store(client, opts.S3.Bucket, opts.S3.Prefix, opts.Key), noop, nil
	default:
		return nil, noop, fmt.Errorf("persistence: unknown driver %q", opts.Driver)
	}
}

func newS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("persistence/s3: bucket is not configured")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	loaders := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if opts.Key != "" && opts.Secret != "" {
		loaders = append(loaders, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.Key, opts.Secret, ""),
		))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("persistence/s3: load config: %w", err)
	}
	var clientOpts []func(*s3.Options)
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(cfg, clientOpts...), nil
}
