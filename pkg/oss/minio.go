package oss

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

// MinioStore 基于 MinIO 的媒体存储，视频与图片分桶
type MinioStore struct {
	client     *minio.Client
	publicBase string
	location   string
}

func NewMinioStore(client *minio.Client, publicBase string) *MinioStore {
	return &MinioStore{
		client:     client,
		publicBase: strings.TrimSuffix(publicBase, "/"),
		location:   "us-east-1", // MinIO默认区域
	}
}

func (s *MinioStore) ensureBucket(ctx context.Context, bucketName string) error {
	exists, err := s.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("check bucket error: %w", err)
	}
	if !exists {
		err = s.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: s.location})
		if err != nil {
			return fmt.Errorf("create bucket error: %w", err)
		}
	}
	return nil
}

func (s *MinioStore) Store(ctx context.Context, data []byte, kind Kind) (string, error) {
	bucketName := kind.bucket()
	if err := s.ensureBucket(ctx, bucketName); err != nil {
		return "", err
	}
	object, contentType := objectName(data)
	_, err := s.client.PutObject(ctx, bucketName, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", errors.Wrapf(err, "put object %s/%s", bucketName, object)
	}
	hlog.CtxInfof(ctx, "stored %s object %s/%s (%d bytes)", kind, bucketName, object, len(data))
	return fmt.Sprintf("%s/%s/%s", s.publicBase, bucketName, object), nil
}

func (s *MinioStore) Delete(ctx context.Context, url string, kind Kind) (bool, error) {
	if url == "" {
		return false, nil
	}
	bucketName, object, ok := splitURL(s.publicBase, url)
	if !ok || bucketName != kind.bucket() {
		hlog.CtxWarnf(ctx, "skip deleting foreign %s url %s", kind, url)
		return false, nil
	}
	if _, err := s.client.StatObject(ctx, bucketName, object, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.Wrapf(err, "stat object %s/%s", bucketName, object)
	}
	if err := s.client.RemoveObject(ctx, bucketName, object, minio.RemoveObjectOptions{}); err != nil {
		return false, errors.Wrapf(err, "remove object %s/%s", bucketName, object)
	}
	return true, nil
}
