package store

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ayush/travel-journal/backend/internal/models"
)

// MinioStore wraps a MinIO client for media storage.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

// Put stores the stream under name. size may be -1 when unknown.
func (s *MinioStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if !ValidObjectName(name) {
		return ErrInvalidName
	}
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *MinioStore) Open(ctx context.Context, name string) (io.ReadCloser, models.MediaObject, error) {
	if !ValidObjectName(name) {
		return nil, models.MediaObject{}, ErrInvalidName
	}
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, models.MediaObject{}, err
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, models.MediaObject{}, ErrNotFound
		}
		return nil, models.MediaObject{}, err
	}
	return obj, models.MediaObject{Name: name, Size: info.Size, ModTime: info.LastModified}, nil
}

func (s *MinioStore) Exists(ctx context.Context, name string) (bool, error) {
	if !ValidObjectName(name) {
		return false, ErrInvalidName
	}
	_, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if isNoSuchKey(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes an object.
func (s *MinioStore) Remove(ctx context.Context, name string) error {
	if !ValidObjectName(name) {
		return ErrInvalidName
	}
	return s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
}

func (s *MinioStore) List(ctx context.Context) ([]models.MediaObject, error) {
	var objs []models.MediaObject
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if info.Err != nil {
			return nil, fmt.Errorf("minio list: %w", info.Err)
		}
		objs = append(objs, models.MediaObject{Name: info.Key, Size: info.Size, ModTime: info.LastModified})
	}
	return objs, nil
}

func isNoSuchKey(err error) bool {
	return err != nil && minio.ToErrorResponse(err).Code == "NoSuchKey"
}
