package service

import (
	"context"
	"errors"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
)

// loadOwned 读取实体并校验归属，在任何级联步骤之前返回 NotFound / Unauthorized
func loadOwned[T any](ctx context.Context, coll docstore.Collection[T], id, actor string, owner func(*T) string) error {
	if err := utils.ValidateIDs(actor, id); err != nil {
		return err
	}
	doc, err := coll.FindByID(ctx, id)
	if errors.Is(err, docstore.ErrNoDocuments) {
		return errno.NotFoundErr.WithMessage(coll.Name() + " not found: " + id)
	}
	if err != nil {
		return errno.Upstream(err)
	}
	if owner(doc) != actor {
		return errno.UnauthorizedErr.WithMessage("only the owner can delete this " + coll.Name())
	}
	return nil
}

// RemoveUser 只允许用户删除自己的账号
func (s *CascadeService) RemoveUser(ctx context.Context, actor, userID string) (*CascadeReport, error) {
	if err := loadOwned(ctx, s.store.Users, userID, actor, func(u *model.User) string { return u.ID }); err != nil {
		return nil, err
	}
	return s.DeleteUser(ctx, userID)
}

func (s *CascadeService) RemoveVideo(ctx context.Context, actor, videoID string) (*CascadeReport, error) {
	if err := loadOwned(ctx, s.store.Videos, videoID, actor, func(v *model.Video) string { return v.Owner }); err != nil {
		return nil, err
	}
	return s.DeleteVideo(ctx, videoID)
}

func (s *CascadeService) RemoveComment(ctx context.Context, actor, commentID string) (*CascadeReport, error) {
	if err := loadOwned(ctx, s.store.Comments, commentID, actor, func(c *model.Comment) string { return c.Owner }); err != nil {
		return nil, err
	}
	return s.DeleteComment(ctx, commentID)
}

func (s *CascadeService) RemoveTweet(ctx context.Context, actor, tweetID string) (*CascadeReport, error) {
	if err := loadOwned(ctx, s.store.Tweets, tweetID, actor, func(t *model.Tweet) string { return t.Owner }); err != nil {
		return nil, err
	}
	return s.DeleteTweet(ctx, tweetID)
}

func (s *CascadeService) RemovePlaylist(ctx context.Context, actor, playlistID string) (*CascadeReport, error) {
	if err := loadOwned(ctx, s.store.Playlists, playlistID, actor, func(p *model.Playlist) string { return p.Owner }); err != nil {
		return nil, err
	}
	return s.DeletePlaylist(ctx, playlistID)
}
