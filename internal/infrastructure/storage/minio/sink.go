package minio

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/rxncenter/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/rxncenter/internal/infrastructure/storage/npy"
	"github.com/turtacn/rxncenter/pkg/errors"
)

const (
	contentTypeJSON   = "application/json"
	contentTypeBinary = "application/octet-stream"
)

// ObjectSink stores export blobs as objects under an optional key prefix.
type ObjectSink struct {
	client *Client
	prefix string
}

var _ npy.Sink = (*ObjectSink)(nil)

// NewObjectSink returns a Sink writing to client's bucket below prefix.
func NewObjectSink(client *Client, prefix string) *ObjectSink {
	return &ObjectSink{client: client, prefix: strings.Trim(prefix, "/")}
}

// Put uploads data and returns its s3:// location.
func (s *ObjectSink) Put(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", errors.InvalidParam("object name is required")
	}
	if err := s.client.EnsureBucket(ctx); err != nil {
		return "", err
	}

	key := strings.TrimPrefix(path.Join(s.prefix, name), "/")
	opts := minio.PutObjectOptions{ContentType: contentTypeFor(name)}
	info, err := s.client.api.PutObject(ctx, s.client.Bucket(), key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExportFailed, "upload failed").WithDetailf("key=%s", key)
	}

	s.client.logger.Debug("object uploaded",
		logging.String("bucket", s.client.Bucket()),
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return "s3://" + s.client.Bucket() + "/" + key, nil
}

func contentTypeFor(name string) string {
	if strings.HasSuffix(name, ".json") {
		return contentTypeJSON
	}
	return contentTypeBinary
}

//Personal.AI order the ending
