// Package minio uploads exported feature batches to an S3 compatible object
// store through minio-go.
package minio

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/rxncenter/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/rxncenter/pkg/errors"
)

// ObjectAPI is the subset of *minio.Client used here.
type ObjectAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// Config holds connection parameters.
type Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	Region          string        `mapstructure:"region"`
	Bucket          string        `mapstructure:"bucket"`
	CreateBucket    bool          `mapstructure:"create_bucket"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// Client wraps an ObjectAPI bound to one bucket.
type Client struct {
	api    ObjectAPI
	config *Config
	logger logging.Logger

	mu          sync.Mutex
	bucketReady bool
}

var (
	ErrBucketNotFound = errors.New(errors.ErrCodeNotFound, "bucket not found")
	ErrInvalidConfig  = errors.New(errors.ErrCodeValidation, "invalid minio config")
)

// NewClient dials the endpoint, verifies connectivity and makes sure the
// bucket exists.
func NewClient(ctx context.Context, cfg *Config, log logging.Logger) (*Client, error) {
	if cfg == nil || cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, ErrInvalidConfig.WithDetail("endpoint and bucket are required")
	}
	applyDefaults(cfg)

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	// Verify connection
	if _, err := api.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CodeExportFailed, "failed to connect to minio")
	}

	c := newClientWithAPI(api, cfg, log)
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	c.logger.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

func newClientWithAPI(api ObjectAPI, cfg *Config, log logging.Logger) *Client {
	applyDefaults(cfg)
	return &Client{api: api, config: cfg, logger: logging.OrDefault(log)}
}

func applyDefaults(cfg *Config) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.config.Bucket
}

// EnsureBucket checks the bucket once per Client and creates it when
// CreateBucket is set.
func (c *Client) EnsureBucket(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bucketReady {
		return nil
	}

	bucket := c.config.Bucket
	exists, err := c.api.BucketExists(ctx, bucket)
	if err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "failed to check bucket existence")
	}
	if !exists {
		if !c.config.CreateBucket {
			return ErrBucketNotFound.WithDetailf("bucket=%s", bucket)
		}
		if err := c.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
			return errors.Wrap(err, errors.CodeExportFailed, "failed to create bucket").WithDetailf("bucket=%s", bucket)
		}
		c.logger.Info("Created bucket", logging.String("bucket", bucket))
	}
	c.bucketReady = true
	return nil
}

// HealthStatus reports reachability of the endpoint and bucket.
type HealthStatus struct {
	Healthy bool
	Latency time.Duration
	Bucket  bool
	Error   string
}

// HealthCheck lists buckets and checks the configured one.
func (c *Client) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()
	_, err := c.api.ListBuckets(ctx)
	status := &HealthStatus{Healthy: err == nil, Latency: time.Since(start)}
	if err != nil {
		status.Error = err.Error()
		return status, err
	}

	exists, err := c.api.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		status.Healthy = false
		status.Error = err.Error()
		return status, err
	}
	status.Bucket = exists
	if !exists {
		status.Healthy = false
		status.Error = "bucket " + c.config.Bucket + " missing"
	}
	return status, nil
}

//Personal.AI order the ending
