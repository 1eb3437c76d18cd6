// Package imagestore persists saved image binaries in S3-compatible object
// storage (MinIO locally). Working-set images stay inline as data URIs;
// only explicit saves land here.
package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	endpoint   string
	useSSL     bool
	initOnce   sync.Once
	initErr    error
}

func New(cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &Store{
		client:     client,
		bucketName: bucket,
		region:     region,
		endpoint:   endpoint,
		useSSL:     cfg.UseSSL,
	}, nil
}

// Enabled reports whether the store can accept uploads; all methods are
// safe on a nil store.
func (s *Store) Enabled() bool { return s != nil && s.client != nil }

func (s *Store) ensureBucket(ctx context.Context) error {
	if !s.Enabled() {
		return fmt.Errorf("store is nil")
	}
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// Put uploads one image and returns its stable object URL. The URL is
// deterministic per key so gallery de-duplication by URL keeps working for
// stored images.
func (s *Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("store is nil")
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return s.objectURL(key), nil
}

// PresignedURL returns a short-lived download URL for one stored image.
func (s *Store) PresignedURL(ctx context.Context, key string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("store is nil")
	}
	// Expiry: 1 hour
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, time.Hour, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *Store) objectURL(key string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return scheme + "://" + s.endpoint + "/" + s.bucketName + "/" + key
}
