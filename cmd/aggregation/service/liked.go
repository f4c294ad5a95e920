package service

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
)

// likedTargets 用户点过赞的某类目标，按点赞时间倒序
func (s *AggregationService) likedTargets(ctx context.Context, userID string, kind model.TargetKind) ([]*model.Like, error) {
	if err := utils.ValidateIDs(userID); err != nil {
		return nil, err
	}
	likes, err := s.store.Likes.FindMany(ctx, docstore.And(
		docstore.Eq(model.FieldLikedBy, userID),
		docstore.Eq(model.FieldTargetKind, string(kind)),
	), docstore.FindOptions{Sort: newestFirst})
	if err != nil {
		return nil, errno.Upstream(err)
	}
	return likes, nil
}

func targetIDs(likes []*model.Like) []string {
	ids := make([]string, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.Target.ID)
	}
	return ids
}

func (s *AggregationService) LikedVideos(ctx context.Context, userID string) ([]LikedItem[VideoView], error) {
	likes, err := s.likedTargets(ctx, userID, model.TargetVideo)
	if err != nil {
		return nil, err
	}
	videos, err := s.resolveVideos(ctx, targetIDs(likes), true)
	if err != nil {
		return nil, err
	}
	m := make(map[string]VideoView, len(videos))
	for _, v := range videos {
		m[v.ID] = v
	}
	out := make([]LikedItem[VideoView], 0, len(likes))
	for _, l := range likes {
		if v, ok := m[l.Target.ID]; ok {
			out = append(out, LikedItem[VideoView]{LikedAt: l.CreatedAt, Item: v})
		}
	}
	return out, nil
}

func (s *AggregationService) LikedTweets(ctx context.Context, userID string) ([]LikedItem[TweetView], error) {
	likes, err := s.likedTargets(ctx, userID, model.TargetTweet)
	if err != nil {
		return nil, err
	}
	tweets, err := findIn(ctx, s.store.Tweets, model.FieldID, unique(targetIDs(likes)))
	if err != nil {
		return nil, err
	}
	views, err := s.tweetViews(ctx, tweets)
	if err != nil {
		return nil, err
	}
	m := make(map[string]TweetView, len(views))
	for _, v := range views {
		m[v.ID] = v
	}
	out := make([]LikedItem[TweetView], 0, len(likes))
	for _, l := range likes {
		if v, ok := m[l.Target.ID]; ok {
			out = append(out, LikedItem[TweetView]{LikedAt: l.CreatedAt, Item: v})
		}
	}
	return out, nil
}

func (s *AggregationService) LikedComments(ctx context.Context, userID string) ([]LikedItem[CommentView], error) {
	likes, err := s.likedTargets(ctx, userID, model.TargetComment)
	if err != nil {
		return nil, err
	}
	ids := unique(targetIDs(likes))
	comments, err := findIn(ctx, s.store.Comments, model.FieldID, ids)
	if err != nil {
		return nil, err
	}
	counts, err := s.likesOn(ctx, model.TargetComment, ids)
	if err != nil {
		return nil, err
	}
	owners := make([]string, 0, len(comments))
	for _, c := range comments {
		owners = append(owners, c.Owner)
	}
	users, err := s.usersByID(ctx, owners)
	if err != nil {
		return nil, err
	}
	m := byID(comments, func(c *model.Comment) string { return c.ID })
	out := make([]LikedItem[CommentView], 0, len(likes))
	for _, l := range likes {
		c, ok := m[l.Target.ID]
		if !ok {
			continue
		}
		out = append(out, LikedItem[CommentView]{LikedAt: l.CreatedAt, Item: CommentView{
			ID:        c.ID,
			Video:     c.Video,
			Content:   c.Content,
			Owner:     summary(users, c.Owner),
			LikeCount: counts.counts[c.ID],
			IsLiked:   true,
			CreatedAt: c.CreatedAt,
		}})
	}
	return out, nil
}
