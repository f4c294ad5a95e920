package service

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// Dashboard 用户后台：自己的内容、订阅关系以及每条内容收到的赞
func (s *AggregationService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	if err := utils.ValidateIDs(userID); err != nil {
		return nil, err
	}
	user, err := mustFind(ctx, s.store.Users, userID, "user")
	if err != nil {
		return nil, err
	}

	d := &Dashboard{User: user.Summary()}
	ownedBy := docstore.Eq(model.FieldOwner, userID)
	all := docstore.FindOptions{Sort: newestFirst}
	var subs []*model.Subscription

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Videos, err = s.store.Videos.FindMany(gctx, ownedBy, all)
		return err
	})
	g.Go(func() (err error) {
		d.Tweets, err = s.store.Tweets.FindMany(gctx, ownedBy, all)
		return err
	})
	g.Go(func() (err error) {
		d.Comments, err = s.store.Comments.FindMany(gctx, ownedBy, all)
		return err
	})
	g.Go(func() (err error) {
		d.Playlists, err = s.store.Playlists.FindMany(gctx, ownedBy, all)
		return err
	})
	g.Go(func() (err error) {
		d.Counts.Subscribers, err = s.store.Subscriptions.Count(gctx, docstore.Eq(model.FieldChannel, userID))
		return err
	})
	g.Go(func() (err error) {
		subs, err = s.store.Subscriptions.FindMany(gctx, docstore.Eq(model.FieldSubscriber, userID), all)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errno.Upstream(err)
	}

	videoIDs := make([]string, 0, len(d.Videos))
	for _, v := range d.Videos {
		videoIDs = append(videoIDs, v.ID)
		d.Counts.TotalViews += v.Views
	}
	tweetIDs := make([]string, 0, len(d.Tweets))
	for _, t := range d.Tweets {
		tweetIDs = append(tweetIDs, t.ID)
	}
	commentIDs := make([]string, 0, len(d.Comments))
	for _, c := range d.Comments {
		commentIDs = append(commentIDs, c.ID)
	}
	channelIDs := make([]string, 0, len(subs))
	for _, sub := range subs {
		channelIDs = append(channelIDs, sub.Channel)
	}

	var videoLikes, tweetLikes, commentLikes *likeIndex
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		videoLikes, err = s.likesOn(gctx, model.TargetVideo, videoIDs)
		return err
	})
	g.Go(func() (err error) {
		tweetLikes, err = s.likesOn(gctx, model.TargetTweet, tweetIDs)
		return err
	})
	g.Go(func() (err error) {
		commentLikes, err = s.likesOn(gctx, model.TargetComment, commentIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	likers := append(append(append([]string{}, videoLikes.allLikers()...), tweetLikes.allLikers()...), commentLikes.allLikers()...)
	users, err := s.usersByID(ctx, append(likers, channelIDs...))
	if err != nil {
		return nil, err
	}

	d.SubscribedChannels = make([]model.UserSummary, 0, len(channelIDs))
	for _, id := range channelIDs {
		if _, ok := users[id]; ok {
			d.SubscribedChannels = append(d.SubscribedChannels, summary(users, id))
		}
	}

	d.LikesReceived = make([]LikeGroup, 0)
	for _, group := range []struct {
		kind model.TargetKind
		ids  []string
		idx  *likeIndex
	}{
		{model.TargetVideo, videoIDs, videoLikes},
		{model.TargetTweet, tweetIDs, tweetLikes},
		{model.TargetComment, commentIDs, commentLikes},
	} {
		for _, id := range group.ids {
			n := group.idx.counts[id]
			if n == 0 {
				continue
			}
			lg := LikeGroup{Kind: group.kind, ContentID: id, Count: n, Likers: make([]model.UserSummary, 0, n)}
			for _, liker := range group.idx.likers[id] {
				lg.Likers = append(lg.Likers, summary(users, liker))
			}
			d.LikesReceived = append(d.LikesReceived, lg)
			d.Counts.LikesGot += n
		}
	}

	d.Counts.Videos = int64(len(d.Videos))
	d.Counts.Tweets = int64(len(d.Tweets))
	d.Counts.Comments = int64(len(d.Comments))
	d.Counts.Playlists = int64(len(d.Playlists))
	d.Counts.SubscribedTo = int64(len(subs))
	return d, nil
}
