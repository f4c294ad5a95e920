package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

type PublishRequest struct {
	Owner       string
	Title       string
	Description string
	Media       []byte
	Thumbnail   []byte
	Duration    float64
}

// VideoDetail 播放页数据
type VideoDetail struct {
	Video        *model.Video      `json:"video"`
	Owner        model.UserSummary `json:"owner"`
	LikeCount    int64             `json:"likesCount"`
	CommentCount int64             `json:"commentsCount"`
	IsLiked      bool              `json:"isLiked"`
}

func videoOwner(v *model.Video) string { return v.Owner }

// PublishVideo 上传视频与封面后写入文档，写入失败时删除已上传的媒体
func (s *ContentService) PublishVideo(ctx context.Context, req *PublishRequest) (*model.Video, error) {
	if err := utils.ValidateIDs(req.Owner); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"title": req.Title, "description": req.Description}); err != nil {
		return nil, err
	}
	if len(req.Media) == 0 || len(req.Thumbnail) == 0 {
		return nil, errno.InvalidOperationErr.WithMessage("video file and thumbnail are required")
	}
	if _, err := find(ctx, s.store.Users, req.Owner); err != nil {
		return nil, err
	}

	media, err := s.blobs.Store(ctx, req.Media, oss.KindVideo)
	if err != nil {
		return nil, errno.UpstreamErr.WithMessage("upload video failed").Wrap(err)
	}
	thumbnail, err := s.blobs.Store(ctx, req.Thumbnail, oss.KindImage)
	if err != nil {
		s.dropBlob(ctx, media, oss.KindVideo)
		return nil, errno.UpstreamErr.WithMessage("upload thumbnail failed").Wrap(err)
	}

	now := time.Now()
	video := &model.Video{
		Owner:       req.Owner,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		VideoFile:   media,
		Thumbnail:   thumbnail,
		Duration:    req.Duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.store.Videos.Insert(ctx, video); err != nil {
		hlog.CtxErrorf(ctx, "insert video of %s failed, dropping uploaded media: %v", req.Owner, err)
		s.dropBlob(ctx, media, oss.KindVideo)
		s.dropBlob(ctx, thumbnail, oss.KindImage)
		return nil, errno.Upstream(err)
	}
	return video, nil
}

// UpdateVideo 修改标题、简介，thumbnail 非空时替换封面
func (s *ContentService) UpdateVideo(ctx context.Context, actor, videoID, title, description string, thumbnail []byte) (*model.Video, error) {
	video, err := findOwned(ctx, s.store.Videos, videoID, actor, videoOwner)
	if err != nil {
		return nil, err
	}
	if err := required(map[string]string{"title": title, "description": description}); err != nil {
		return nil, err
	}
	set := bson.M{model.FieldTitle: strings.TrimSpace(title), "description": strings.TrimSpace(description)}
	var newThumb string
	if len(thumbnail) > 0 {
		if newThumb, err = s.blobs.Store(ctx, thumbnail, oss.KindImage); err != nil {
			return nil, errno.UpstreamErr.WithMessage("upload thumbnail failed").Wrap(err)
		}
		set["thumbnail"] = newThumb
	}
	updated, err := update(ctx, s.store.Videos, videoID, docstore.Update{Set: set})
	if err != nil {
		s.dropBlob(ctx, newThumb, oss.KindImage)
		return nil, err
	}
	if newThumb != "" {
		s.dropBlob(ctx, video.Thumbnail, oss.KindImage)
	}
	return updated, nil
}

func (s *ContentService) TogglePublishStatus(ctx context.Context, actor, videoID string) (*model.Video, error) {
	video, err := findOwned(ctx, s.store.Videos, videoID, actor, videoOwner)
	if err != nil {
		return nil, err
	}
	return update(ctx, s.store.Videos, videoID, docstore.Update{Set: bson.M{model.FieldIsPublished: !video.IsPublished}})
}

// WatchVideo 返回视频详情，同时累加播放数并记入观看历史
// 未发布的视频只有作者本人可以观看
func (s *ContentService) WatchVideo(ctx context.Context, viewer, videoID string) (*VideoDetail, error) {
	if err := utils.ValidateIDs(viewer, videoID); err != nil {
		return nil, err
	}
	video, err := find(ctx, s.store.Videos, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsPublished && video.Owner != viewer {
		return nil, errno.NotFoundErr.WithMessage("videos not found: " + videoID)
	}

	matched, err := s.store.Videos.UpdateByID(ctx, videoID, docstore.Update{Inc: bson.M{model.FieldViewCount: 1}})
	if err != nil {
		return nil, errno.Upstream(err)
	}
	if matched {
		video.Views++
	}
	if err := s.AddToWatchHistory(ctx, viewer, videoID); err != nil {
		return nil, err
	}

	detail := &VideoDetail{Video: video, Owner: model.UserSummary{ID: video.Owner}}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		owner, err := s.store.Users.FindByID(gctx, video.Owner)
		if err == nil {
			detail.Owner = owner.Summary()
			return nil
		}
		if errors.Is(err, docstore.ErrNoDocuments) {
			return nil
		}
		return err
	})
	g.Go(func() (err error) {
		detail.LikeCount, err = s.store.Likes.Count(gctx, docstore.And(
			docstore.Eq(model.FieldTargetKind, string(model.TargetVideo)),
			docstore.Eq(model.FieldTargetID, videoID),
		))
		return err
	})
	g.Go(func() (err error) {
		detail.CommentCount, err = s.store.Comments.Count(gctx, docstore.Eq(model.FieldVideo, videoID))
		return err
	})
	g.Go(func() error {
		n, err := s.store.Likes.Count(gctx, docstore.And(
			docstore.Eq(model.FieldLikedBy, viewer),
			docstore.Eq(model.FieldTargetKind, string(model.TargetVideo)),
			docstore.Eq(model.FieldTargetID, videoID),
		))
		detail.IsLiked = n > 0
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errno.Upstream(err)
	}
	return detail, nil
}

// AddToWatchHistory 观看历史按集合语义维护，重复观看的视频移到末尾
func (s *ContentService) AddToWatchHistory(ctx context.Context, userID, videoID string) error {
	if err := utils.ValidateIDs(userID, videoID); err != nil {
		return err
	}
	if _, err := find(ctx, s.store.Videos, videoID); err != nil {
		return err
	}
	matched, err := s.store.Users.UpdateByID(ctx, userID, docstore.Update{
		MoveToEnd: bson.M{model.FieldWatchHistory: videoID},
	})
	if err != nil {
		return errno.Upstream(err)
	}
	if !matched {
		return errno.NotFoundErr.WithMessage("users not found: " + userID)
	}
	return nil
}
