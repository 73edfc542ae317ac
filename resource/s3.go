// Package resource provides snap.FileReader implementations for @file
// arguments stored outside the local filesystem.
package resource

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dzonerzy/snapargv/snap"
)

// S3Config describes an S3-compatible endpoint.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	// Timeout bounds each download (default: 30s).
	Timeout time.Duration
}

// S3Reader serves "@s3://bucket/key" arguments from an S3-compatible store.
// Other paths go to Fallback, the local filesystem by default.
type S3Reader struct {
	client   *minio.Client
	timeout  time.Duration
	Fallback snap.FileReader
}

// NewS3Reader creates a reader for the given endpoint.
func NewS3Reader(config S3Config) (*S3Reader, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, err
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &S3Reader{client: client, timeout: timeout, Fallback: snap.OSFileReader{}}, nil
}

// ReadFile implements snap.FileReader.
func (r *S3Reader) ReadFile(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "s3://")
	if !ok {
		if r.Fallback == nil {
			return "", &snap.ParseError{Kind: snap.KindFileNotFound, Message: "file not found: " + path, Param: path}
		}
		return r.Fallback.ReadFile(path)
	}

	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", &snap.ParseError{Kind: snap.KindUsage, Message: fmt.Sprintf("invalid S3 path %q, want s3://bucket/key", path), Param: path}
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	object, err := r.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", r.wrap(path, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return "", r.wrap(path, err)
	}
	return string(data), nil
}

func (r *S3Reader) wrap(path string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return &snap.ParseError{Kind: snap.KindFileNotFound, Message: "file not found: " + path, Param: path, Cause: err}
	}
	return &snap.ParseError{Kind: snap.KindInvalidFileFormat, Message: "cannot read " + path, Param: path, Cause: err}
}
