package service

import (
	"context"
	"strings"
	"time"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
)

const fieldContent = "content"

func content(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errno.InvalidOperationErr.WithMessage("content is required")
	}
	return s, nil
}

// AddComment 插入前重新读取视频与作者，避免写入悬空引用
func (s *ContentService) AddComment(ctx context.Context, actor, videoID, text string) (*model.Comment, error) {
	if err := utils.ValidateIDs(actor, videoID); err != nil {
		return nil, err
	}
	body, err := content(text)
	if err != nil {
		return nil, err
	}
	if _, err := find(ctx, s.store.Users, actor); err != nil {
		return nil, err
	}
	if _, err := find(ctx, s.store.Videos, videoID); err != nil {
		return nil, err
	}
	now := time.Now()
	c := &model.Comment{Owner: actor, Video: videoID, Content: body, CreatedAt: now, UpdatedAt: now}
	if _, err := s.store.Comments.Insert(ctx, c); err != nil {
		return nil, errno.Upstream(err)
	}
	return c, nil
}

func (s *ContentService) UpdateComment(ctx context.Context, actor, commentID, text string) (*model.Comment, error) {
	if _, err := findOwned(ctx, s.store.Comments, commentID, actor, func(c *model.Comment) string { return c.Owner }); err != nil {
		return nil, err
	}
	body, err := content(text)
	if err != nil {
		return nil, err
	}
	return update(ctx, s.store.Comments, commentID, docstore.Update{Set: bson.M{fieldContent: body}})
}

func (s *ContentService) CreateTweet(ctx context.Context, actor, text string) (*model.Tweet, error) {
	if err := utils.ValidateIDs(actor); err != nil {
		return nil, err
	}
	body, err := content(text)
	if err != nil {
		return nil, err
	}
	if _, err := find(ctx, s.store.Users, actor); err != nil {
		return nil, err
	}
	now := time.Now()
	t := &model.Tweet{Owner: actor, Content: body, CreatedAt: now, UpdatedAt: now}
	if _, err := s.store.Tweets.Insert(ctx, t); err != nil {
		return nil, errno.Upstream(err)
	}
	return t, nil
}

func (s *ContentService) UpdateTweet(ctx context.Context, actor, tweetID, text string) (*model.Tweet, error) {
	if _, err := findOwned(ctx, s.store.Tweets, tweetID, actor, func(t *model.Tweet) string { return t.Owner }); err != nil {
		return nil, err
	}
	body, err := content(text)
	if err != nil {
		return nil, err
	}
	return update(ctx, s.store.Tweets, tweetID, docstore.Update{Set: bson.M{fieldContent: body}})
}
