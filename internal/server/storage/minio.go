package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage keeps blobs in a MinIO bucket via minio-go.
type MinioStorage struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// NewMinioStorage connects and checks that the bucket exists. The bucket
// is created when missing.
func NewMinioStorage(ctx context.Context, opts S3Options) (*MinioStorage, error) {
	endpoint, secure, err := normaliseEndpoint(opts.BaseEndpoint)
	if err != nil {
		return nil, storageErr("init", opts.BaseEndpoint, err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, storageErr("init", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, storageErr("init", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, storageErr("init", opts.Bucket, err)
		}
	}

	return &MinioStorage{client: client, bucket: opts.Bucket, now: time.Now}, nil
}

// normaliseEndpoint accepts "host:port" or an http(s) URL without a path
// and returns the host:port minio-go expects plus whether TLS is on.
func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	return raw, false, nil
}

func (s *MinioStorage) Put(ctx context.Context, originalName string, data []byte) (string, error) {
	key := NewLocator(s.now(), originalName)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return "", storageErr("put", key, err)
	}
	return key, nil
}

func (s *MinioStorage) Get(ctx context.Context, locator string) ([]byte, error) {
	if err := validLocator(locator); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, locator, minio.GetObjectOptions{})
	if err != nil {
		return nil, storageErr("get", locator, err)
	}
	defer obj.Close()

	b, err := io.ReadAll(obj)
	if err != nil {
		return nil, storageErr("get", locator, err)
	}
	return b, nil
}

func (s *MinioStorage) Delete(ctx context.Context, locator string) error {
	if err := validLocator(locator); err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, locator, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return storageErr("delete", locator, err)
	}
	return nil
}
