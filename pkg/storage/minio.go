package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Object describes a stored file.
type Object struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
}

// MinioStorage keeps uploaded images in one bucket of an S3 compatible store.
type MinioStorage struct {
	cfg    Config
	client *minio.Client
}

// NewMinio connects to the object store and makes sure the bucket exists.
func NewMinio(ctx context.Context, cfg Config) (*MinioStorage, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating minio client: %w", err)
	}
	s := &MinioStorage{cfg: cfg, client: cl}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("error preparing bucket %s: %w", cfg.Bucket, err)
	}
	log.Printf("Object storage ready (bucket %s)", cfg.Bucket)
	return s, nil
}

func (s *MinioStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// Put stores r under a new unique id. size may be -1 when unknown.
func (s *MinioStorage) Put(ctx context.Context, name, contentType string, size int64, r io.Reader) (*Object, error) {
	id := uuid.NewString()
	info, err := s.client.PutObject(ctx, s.cfg.Bucket, id, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"filename": name},
	})
	if err != nil {
		return nil, err
	}
	return &Object{ID: id, Name: name, ContentType: contentType, Size: info.Size}, nil
}

// Remove deletes the object with the given id.
func (s *MinioStorage) Remove(ctx context.Context, id string) error {
	return s.client.RemoveObject(ctx, s.cfg.Bucket, id, minio.RemoveObjectOptions{})
}

// PresignGet returns a time limited download URL for id.
func (s *MinioStorage) PresignGet(ctx context.Context, id string, ttl time.Duration) (*url.URL, error) {
	return s.client.PresignedGetObject(ctx, s.cfg.Bucket, id, ttl, nil)
}
