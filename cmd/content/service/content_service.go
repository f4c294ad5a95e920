package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"VidTube.com/cmd/dal"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.mongodb.org/mongo-driver/bson"
)

// ContentService 用户、视频、评论、推文、播放列表的创建与修改
// 删除走 integrity 的级联，不在这里
type ContentService struct {
	store *dal.Store
	blobs oss.BlobStore
}

func NewContentService(store *dal.Store, blobs oss.BlobStore) *ContentService {
	return &ContentService{store: store, blobs: blobs}
}

// findOwned 读取实体并校验 actor 是否为所有者
func findOwned[T any](ctx context.Context, coll docstore.Collection[T], id, actor string, owner func(*T) string) (*T, error) {
	if err := utils.ValidateIDs(actor, id); err != nil {
		return nil, err
	}
	doc, err := find(ctx, coll, id)
	if err != nil {
		return nil, err
	}
	if owner(doc) != actor {
		return nil, errno.UnauthorizedErr.WithMessage("only the owner can modify this " + coll.Name())
	}
	return doc, nil
}

func find[T any](ctx context.Context, coll docstore.Collection[T], id string) (*T, error) {
	doc, err := coll.FindByID(ctx, id)
	if errors.Is(err, docstore.ErrNoDocuments) {
		return nil, errno.NotFoundErr.WithMessage(coll.Name() + " not found: " + id)
	}
	if err != nil {
		return nil, errno.Upstream(err)
	}
	return doc, nil
}

// update 更新并重新读取；文档在两次调用之间被删时返回 NotFound
func update[T any](ctx context.Context, coll docstore.Collection[T], id string, u docstore.Update) (*T, error) {
	if u.Set == nil {
		u.Set = bson.M{}
	}
	u.Set["updatedAt"] = time.Now()
	matched, err := coll.UpdateByID(ctx, id, u)
	if errors.Is(err, docstore.ErrDuplicateKey) {
		return nil, errno.ConflictErr.WithMessage("value already taken in " + coll.Name())
	}
	if err != nil {
		return nil, errno.Upstream(err)
	}
	if !matched {
		return nil, errno.NotFoundErr.WithMessage(coll.Name() + " not found: " + id)
	}
	return find(ctx, coll, id)
}

func required(fields map[string]string) error {
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			return errno.InvalidOperationErr.WithMessage(name + " is required")
		}
	}
	return nil
}

// dropBlob 清理不再被引用的媒体，失败只记录日志
func (s *ContentService) dropBlob(ctx context.Context, url string, kind oss.Kind) {
	if url == "" {
		return
	}
	if _, err := s.blobs.Delete(ctx, url, kind); err != nil {
		hlog.CtxWarnf(ctx, "delete blob %s failed: %v", url, err)
	}
}
