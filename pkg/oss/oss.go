package oss

import (
	"context"
	"net/http"
	"strings"

	"VidTube.com/pkg/constants"
	"github.com/google/uuid"
)

// Kind 媒体类型，决定对象落在哪个桶
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

// BlobStore 二进制媒体存储，引用对外只是一个不透明的 url
type BlobStore interface {
	// Store 保存数据并返回访问 url
	Store(ctx context.Context, data []byte, kind Kind) (string, error)
	// Delete url 为空时什么也不做；对象不存在或不属于本存储时返回 false
	Delete(ctx context.Context, url string, kind Kind) (bool, error)
}

func (k Kind) bucket() string {
	if k == KindVideo {
		return constants.VideoBucket
	}
	return constants.PictureBucket
}

// objectName uuid 加上按内容嗅探出的扩展名
func objectName(data []byte) (string, string) {
	contentType := http.DetectContentType(data)
	var suffix string
	switch contentType {
	case "image/jpeg":
		suffix = ".jpg"
	case "image/png":
		suffix = ".png"
	case "image/gif":
		suffix = ".gif"
	case "image/webp":
		suffix = ".webp"
	case "video/mp4":
		suffix = ".mp4"
	case "video/webm":
		suffix = ".webm"
	case "video/avi":
		suffix = ".avi"
	}
	return uuid.New().String() + suffix, contentType
}

// splitURL 从 {base}/{bucket}/{object} 中取出 bucket 与 object
func splitURL(base, url string) (string, string, bool) {
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(url, base+"/") {
		return "", "", false
	}
	rest := strings.TrimPrefix(url, base+"/")
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}
