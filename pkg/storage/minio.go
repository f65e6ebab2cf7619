package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig locates an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL prefixes object URLs. Defaults to the endpoint plus bucket.
	PublicURL string
}

// Minio stores objects in an S3-compatible bucket.
type Minio struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

var _ Bucket = (*Minio)(nil)

// NewMinio connects to the endpoint and creates the bucket when it does not
// exist yet.
func NewMinio(ctx context.Context, cfg MinioConfig) (*Minio, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("storage: minio endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: create bucket %s: %w", cfg.Bucket, err)
		}
	}

	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
	}
	return &Minio{client: client, bucket: cfg.Bucket, publicURL: public}, nil
}

func (m *Minio) Put(ctx context.Context, id, name, contentType string, body io.Reader, size int64) (*Object, error) {
	if size > MaxObjectSize {
		return nil, ErrTooLarge
	}
	if size <= 0 {
		size = -1
	}
	info, err := m.client.PutObject(ctx, m.bucket, id, body, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"filename": name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("storage: put %s: %w", name, err)
	}
	return &Object{
		ID:          id,
		Bucket:      m.bucket,
		Name:        name,
		ContentType: contentType,
		Size:        info.Size,
		URL:         m.publicURL + "/" + url.PathEscape(id),
	}, nil
}

func (m *Minio) Get(ctx context.Context, id string) (io.ReadCloser, *Object, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("storage: get %s: %w", id, err)
	}
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).StatusCode == http.StatusNotFound {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, nil, fmt.Errorf("storage: stat %s: %w", id, err)
	}
	return obj, &Object{
		ID:          id,
		Bucket:      m.bucket,
		Name:        stat.UserMetadata["Filename"],
		ContentType: stat.ContentType,
		Size:        stat.Size,
		URL:         m.publicURL + "/" + url.PathEscape(id),
	}, nil
}
