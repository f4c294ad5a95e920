package service

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/utils"
)

// DeleteUser 依次删除：推文上的赞与推文、名下视频（级联）、播放列表、
// 评论上的赞与评论、该用户点过的赞、订阅关系、头像与封面，最后是用户本身
func (s *CascadeService) DeleteUser(ctx context.Context, userID string) (*CascadeReport, error) {
	if err := utils.ValidateIDs(userID); err != nil {
		return nil, err
	}
	r := s.begin(ctx, RootUser, userID)
	return r.finish(r.deleteUser(userID))
}

func (r *run) deleteUser(userID string) error {
	store := r.svc.store
	var user *model.User
	if err := r.step("load_user", func(ctx context.Context) (err error) {
		user, err = findRoot(ctx, store.Users, userID)
		return err
	}); err != nil {
		return err
	}

	ownedBy := docstore.Eq(model.FieldOwner, userID)

	var tweetIDs []string
	if err := r.step("load_tweets", func(ctx context.Context) error {
		tweets, err := store.Tweets.FindMany(ctx, ownedBy, docstore.FindOptions{})
		tweetIDs = ids(tweets, func(t *model.Tweet) string { return t.ID })
		return err
	}); err != nil {
		return err
	}
	if err := r.deleteLikesOn(model.TargetTweet, tweetIDs...); err != nil {
		return err
	}
	if err := r.step("tweets", func(ctx context.Context) error {
		n, err := store.Tweets.DeleteMany(ctx, ownedBy)
		r.deleted("tweets", n)
		return err
	}); err != nil {
		return err
	}

	var videos []*model.Video
	if err := r.step("load_videos", func(ctx context.Context) (err error) {
		videos, err = store.Videos.FindMany(ctx, ownedBy, docstore.FindOptions{})
		return err
	}); err != nil {
		return err
	}
	for _, v := range videos {
		if err := r.deleteVideo(v.ID, v); err != nil {
			return err
		}
	}

	var playlists []*model.Playlist
	if err := r.step("load_playlists", func(ctx context.Context) (err error) {
		playlists, err = store.Playlists.FindMany(ctx, ownedBy, docstore.FindOptions{})
		return err
	}); err != nil {
		return err
	}
	for _, p := range playlists {
		if err := r.deletePlaylist(p.ID); err != nil {
			return err
		}
	}

	var commentIDs []string
	if err := r.step("load_comments", func(ctx context.Context) error {
		comments, err := store.Comments.FindMany(ctx, ownedBy, docstore.FindOptions{})
		commentIDs = ids(comments, func(c *model.Comment) string { return c.ID })
		return err
	}); err != nil {
		return err
	}
	if err := r.deleteLikesOn(model.TargetComment, commentIDs...); err != nil {
		return err
	}
	if err := r.step("comments", func(ctx context.Context) error {
		n, err := store.Comments.DeleteMany(ctx, ownedBy)
		r.deleted("comments", n)
		return err
	}); err != nil {
		return err
	}

	if err := r.step("likes_by_user", func(ctx context.Context) error {
		n, err := store.Likes.DeleteMany(ctx, docstore.Eq(model.FieldLikedBy, userID))
		r.deleted("likes", n)
		return err
	}); err != nil {
		return err
	}

	if err := r.step("subscriptions_as_subscriber", func(ctx context.Context) error {
		n, err := store.Subscriptions.DeleteMany(ctx, docstore.Eq(model.FieldSubscriber, userID))
		r.deleted("subscriptions", n)
		return err
	}); err != nil {
		return err
	}
	if err := r.step("subscriptions_as_channel", func(ctx context.Context) error {
		n, err := store.Subscriptions.DeleteMany(ctx, docstore.Eq(model.FieldChannel, userID))
		r.deleted("subscriptions", n)
		return err
	}); err != nil {
		return err
	}

	if user != nil {
		if err := r.deleteBlob(user.Avatar, oss.KindImage); err != nil {
			return err
		}
		if err := r.deleteBlob(user.CoverImage, oss.KindImage); err != nil {
			return err
		}
	}

	return r.step("user", func(ctx context.Context) error {
		ok, err := store.Users.DeleteByID(ctx, userID)
		if ok {
			r.deleted("users", 1)
		}
		r.report.RootDeleted = ok && r.report.RootKind == RootUser
		return err
	})
}

// DeleteVideo 删除视频上的赞、评论上的赞与评论，从所有播放列表和观看记录中移除，
// 删除媒体与缩略图，最后删除视频本身
func (s *CascadeService) DeleteVideo(ctx context.Context, videoID string) (*CascadeReport, error) {
	if err := utils.ValidateIDs(videoID); err != nil {
		return nil, err
	}
	r := s.begin(ctx, RootVideo, videoID)
	return r.finish(r.deleteVideo(videoID, nil))
}

// deleteVideo video 为 nil 时先读取；视频已不存在时仍按 id 清理依赖
func (r *run) deleteVideo(videoID string, video *model.Video) error {
	store := r.svc.store
	if video == nil {
		if err := r.step("load_video", func(ctx context.Context) (err error) {
			video, err = findRoot(ctx, store.Videos, videoID)
			return err
		}); err != nil {
			return err
		}
	}

	if err := r.deleteLikesOn(model.TargetVideo, videoID); err != nil {
		return err
	}

	onVideo := docstore.Eq(model.FieldVideo, videoID)
	var commentIDs []string
	if err := r.step("load_video_comments", func(ctx context.Context) error {
		comments, err := store.Comments.FindMany(ctx, onVideo, docstore.FindOptions{})
		commentIDs = ids(comments, func(c *model.Comment) string { return c.ID })
		return err
	}); err != nil {
		return err
	}
	if err := r.deleteLikesOn(model.TargetComment, commentIDs...); err != nil {
		return err
	}
	if err := r.step("video_comments", func(ctx context.Context) error {
		n, err := store.Comments.DeleteMany(ctx, onVideo)
		r.deleted("comments", n)
		return err
	}); err != nil {
		return err
	}

	if err := r.step("playlist_entries", func(ctx context.Context) error {
		n, err := store.Playlists.UpdateMany(ctx, docstore.Eq(model.FieldVideos, videoID),
			docstore.Update{Pull: map[string]any{model.FieldVideos: videoID}})
		r.report.Detached["playlists"] += n
		return err
	}); err != nil {
		return err
	}
	if err := r.step("watch_history_entries", func(ctx context.Context) error {
		n, err := store.Users.UpdateMany(ctx, docstore.Eq(model.FieldWatchHistory, videoID),
			docstore.Update{Pull: map[string]any{model.FieldWatchHistory: videoID}})
		r.report.Detached["watchHistory"] += n
		return err
	}); err != nil {
		return err
	}

	if video != nil {
		if err := r.deleteBlob(video.VideoFile, oss.KindVideo); err != nil {
			return err
		}
		if err := r.deleteBlob(video.Thumbnail, oss.KindImage); err != nil {
			return err
		}
	}

	return r.step("video", func(ctx context.Context) error {
		ok, err := store.Videos.DeleteByID(ctx, videoID)
		if ok {
			r.deleted("videos", 1)
		}
		if r.report.RootKind == RootVideo {
			r.report.RootDeleted = ok
		}
		return err
	})
}

// DeletePlaylist 播放列表不拥有视频，只删除列表本身
func (s *CascadeService) DeletePlaylist(ctx context.Context, playlistID string) (*CascadeReport, error) {
	if err := utils.ValidateIDs(playlistID); err != nil {
		return nil, err
	}
	r := s.begin(ctx, RootPlaylist, playlistID)
	return r.finish(r.deletePlaylist(playlistID))
}

func (r *run) deletePlaylist(playlistID string) error {
	return r.step("playlist", func(ctx context.Context) error {
		ok, err := r.svc.store.Playlists.DeleteByID(ctx, playlistID)
		if ok {
			r.deleted("playlists", 1)
		}
		if r.report.RootKind == RootPlaylist {
			r.report.RootDeleted = ok
		}
		return err
	})
}

// DeleteComment 先删评论上的赞，再删评论
func (s *CascadeService) DeleteComment(ctx context.Context, commentID string) (*CascadeReport, error) {
	if err := utils.ValidateIDs(commentID); err != nil {
		return nil, err
	}
	r := s.begin(ctx, RootComment, commentID)
	err := r.deleteLikesOn(model.TargetComment, commentID)
	if err == nil {
		err = r.step("comment", func(ctx context.Context) error {
			ok, err := s.store.Comments.DeleteByID(ctx, commentID)
			if ok {
				r.deleted("comments", 1)
			}
			r.report.RootDeleted = ok
			return err
		})
	}
	return r.finish(err)
}

// DeleteTweet 先删推文上的赞，再删推文
func (s *CascadeService) DeleteTweet(ctx context.Context, tweetID string) (*CascadeReport, error) {
	if err := utils.ValidateIDs(tweetID); err != nil {
		return nil, err
	}
	r := s.begin(ctx, RootTweet, tweetID)
	err := r.deleteLikesOn(model.TargetTweet, tweetID)
	if err == nil {
		err = r.step("tweet", func(ctx context.Context) error {
			ok, err := s.store.Tweets.DeleteByID(ctx, tweetID)
			if ok {
				r.deleted("tweets", 1)
			}
			r.report.RootDeleted = ok
			return err
		})
	}
	return r.finish(err)
}

// Rerun 按根类型重新执行一次级联，用于修复失败的记录
func (s *CascadeService) Rerun(ctx context.Context, rootKind, rootID string) (*CascadeReport, error) {
	switch rootKind {
	case RootUser:
		return s.DeleteUser(ctx, rootID)
	case RootVideo:
		return s.DeleteVideo(ctx, rootID)
	case RootComment:
		return s.DeleteComment(ctx, rootID)
	case RootTweet:
		return s.DeleteTweet(ctx, rootID)
	case RootPlaylist:
		return s.DeletePlaylist(ctx, rootID)
	}
	return nil, errno.InvalidOperationErr.WithMessage("unknown cascade root kind: " + rootKind)
}
