package oss

import (
	"context"
	"fmt"

	"VidTube.com/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func InitMinio() (*MinioStore, error) {
	cfg := config.ConfigInfo.Blob.Minio
	hlog.Infof("Initializing MinIO client with endpoint: %s, accessKey: %s", cfg.Endpoint, cfg.AccessKeyID)

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		hlog.Errorf("Failed to create MinIO client: %v", err)
		return nil, err
	}

	publicBase := cfg.PublicBase
	if publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBase = scheme + "://" + cfg.Endpoint
	}
	hlog.Info("Connect Minio Success")
	return NewMinioStore(minioClient, publicBase), nil
}

// Init 按 blob.driver 选择实现
func Init(ctx context.Context) (BlobStore, error) {
	switch driver := config.ConfigInfo.Blob.Driver; driver {
	case "", "minio":
		return InitMinio()
	case "s3":
		cfg := config.ConfigInfo.Blob.S3
		return NewS3Store(ctx, cfg.Region, cfg.Bucket, cfg.Endpoint, cfg.PublicBase)
	case "memory":
		hlog.Warn("Using in-memory blob store, media is lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver: %s", driver)
	}
}
