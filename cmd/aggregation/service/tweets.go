package service

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"golang.org/x/sync/errgroup"
)

func (s *AggregationService) tweetViews(ctx context.Context, tweets []*model.Tweet) ([]TweetView, error) {
	ids := make([]string, 0, len(tweets))
	owners := make([]string, 0, len(tweets))
	for _, t := range tweets {
		ids = append(ids, t.ID)
		owners = append(owners, t.Owner)
	}
	likes, err := s.likesOn(ctx, model.TargetTweet, ids)
	if err != nil {
		return nil, err
	}
	users, err := s.usersByID(ctx, append(owners, likes.allLikers()...))
	if err != nil {
		return nil, err
	}
	out := make([]TweetView, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, TweetView{
			ID:        t.ID,
			Content:   t.Content,
			Owner:     summary(users, t.Owner),
			LikeCount: likes.counts[t.ID],
			LikedBy:   displayNames(users, likes.likers[t.ID]),
			CreatedAt: t.CreatedAt,
		})
	}
	return out, nil
}

// UserTweets 用户推文分页，附点赞数与点赞人
func (s *AggregationService) UserTweets(ctx context.Context, userID string, page, limit int64) (*Page[TweetView], error) {
	if err := utils.ValidateIDs(userID); err != nil {
		return nil, err
	}
	page, limit = utils.NormalizePage(page, limit)
	if _, err := mustFind(ctx, s.store.Users, userID, "user"); err != nil {
		return nil, err
	}

	filter := docstore.Eq(model.FieldOwner, userID)
	var (
		total  int64
		tweets []*model.Tweet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.store.Tweets.Count(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		tweets, err = s.store.Tweets.FindMany(gctx, filter, pageOptions(page, limit, newestFirst))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errno.Upstream(err)
	}
	items, err := s.tweetViews(ctx, tweets)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, limit), nil
}
