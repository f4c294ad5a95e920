package service

import (
	"context"
	"errors"
	"strings"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// visibleVideos 频道主本人可见全部视频，其他人只看已发布的
func visibleVideos(channelID, viewer string) docstore.Filter {
	filter := docstore.Eq(model.FieldOwner, channelID)
	if viewer != channelID {
		filter = docstore.And(filter, docstore.Eq(model.FieldIsPublished, true))
	}
	return filter
}

// ChannelProfile 按用户名查频道主页，附订阅数、关注数、视频数以及 viewer 是否已订阅
func (s *AggregationService) ChannelProfile(ctx context.Context, username, viewer string) (*ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, errno.InvalidOperationErr.WithMessage("username is missing")
	}
	if viewer != "" {
		if err := utils.ValidateIDs(viewer); err != nil {
			return nil, err
		}
	}
	user, err := s.store.Users.FindOne(ctx, docstore.Eq(model.FieldUsername, username))
	if errors.Is(err, docstore.ErrNoDocuments) {
		return nil, errno.NotFoundErr.WithMessage("channel does not exist: " + username)
	}
	if err != nil {
		return nil, errno.Upstream(err)
	}

	profile := &ChannelProfile{
		ID:         user.ID,
		Username:   user.Username,
		FullName:   user.FullName,
		Email:      user.Email,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
		CreatedAt:  user.CreatedAt,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile.SubscriberCount, err = s.store.Subscriptions.Count(gctx, docstore.Eq(model.FieldChannel, user.ID))
		return err
	})
	g.Go(func() (err error) {
		profile.SubscribedToCount, err = s.store.Subscriptions.Count(gctx, docstore.Eq(model.FieldSubscriber, user.ID))
		return err
	})
	g.Go(func() (err error) {
		profile.VideoCount, err = s.store.Videos.Count(gctx, visibleVideos(user.ID, viewer))
		return err
	})
	if viewer != "" {
		g.Go(func() error {
			n, err := s.store.Subscriptions.Count(gctx, docstore.And(
				docstore.Eq(model.FieldSubscriber, viewer),
				docstore.Eq(model.FieldChannel, user.ID),
			))
			profile.IsSubscribed = n > 0
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errno.Upstream(err)
	}
	return profile, nil
}

// ChannelStats 频道总播放量、订阅数、视频数与视频获赞数
func (s *AggregationService) ChannelStats(ctx context.Context, channelID string) (*ChannelStats, error) {
	if err := utils.ValidateIDs(channelID); err != nil {
		return nil, err
	}
	if _, err := mustFind(ctx, s.store.Users, channelID, "channel"); err != nil {
		return nil, err
	}

	stats := &ChannelStats{}
	var videos []*model.Video
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		videos, err = s.store.Videos.FindMany(gctx, docstore.Eq(model.FieldOwner, channelID), docstore.FindOptions{})
		return err
	})
	g.Go(func() (err error) {
		stats.TotalSubscribers, err = s.store.Subscriptions.Count(gctx, docstore.Eq(model.FieldChannel, channelID))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errno.Upstream(err)
	}

	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		stats.TotalVideoViews += v.Views
		ids = append(ids, v.ID)
	}
	stats.TotalVideos = int64(len(videos))
	if len(ids) > 0 {
		n, err := s.store.Likes.Count(ctx, docstore.And(
			docstore.Eq(model.FieldTargetKind, string(model.TargetVideo)),
			docstore.In(model.FieldTargetID, ids),
		))
		if err != nil {
			return nil, errno.Upstream(err)
		}
		stats.TotalVideoLikes = n
	}
	return stats, nil
}

var videoSortFields = map[string]string{
	"createdAt": model.FieldCreatedAt,
	"views":     model.FieldViewCount,
	"title":     model.FieldTitle,
	"duration":  model.FieldDuration,
}

// ChannelVideos 频道视频分页，sortBy 取 createdAt / views / title / duration，sortType 取 asc / desc
func (s *AggregationService) ChannelVideos(ctx context.Context, channelID, viewer string, page, limit int64, sortBy, sortType string) (*Page[VideoView], error) {
	if err := utils.ValidateIDs(channelID); err != nil {
		return nil, err
	}
	if sortBy == "" {
		sortBy = "createdAt"
	}
	field, ok := videoSortFields[sortBy]
	if !ok {
		return nil, errno.InvalidOperationErr.WithMessage("unsupported sort field: " + sortBy)
	}
	sort := []docstore.SortField{{Field: field, Desc: sortType != "asc"}}
	page, limit = utils.NormalizePage(page, limit)

	owner, err := mustFind(ctx, s.store.Users, channelID, "channel")
	if err != nil {
		return nil, err
	}

	filter := visibleVideos(channelID, viewer)
	var (
		total  int64
		videos []*model.Video
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.store.Videos.Count(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		videos, err = s.store.Videos.FindMany(gctx, filter, pageOptions(page, limit, sort))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errno.Upstream(err)
	}

	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	likes, err := s.likesOn(ctx, model.TargetVideo, ids)
	if err != nil {
		return nil, err
	}
	users := map[string]*model.User{owner.ID: owner}
	items := make([]VideoView, 0, len(videos))
	for _, v := range videos {
		items = append(items, videoView(v, users, likes))
	}
	return newPage(items, total, page, limit), nil
}

// ChannelSubscribers 只有频道主本人可以查看订阅者列表
func (s *AggregationService) ChannelSubscribers(ctx context.Context, actor, channelID string) ([]SubscriptionView, error) {
	if err := utils.ValidateIDs(actor, channelID); err != nil {
		return nil, err
	}
	if actor != channelID {
		return nil, errno.UnauthorizedErr.WithMessage("only the channel owner can list subscribers")
	}
	subs, err := s.store.Subscriptions.FindMany(ctx, docstore.Eq(model.FieldChannel, channelID),
		docstore.FindOptions{Sort: newestFirst})
	if err != nil {
		return nil, errno.Upstream(err)
	}
	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.Subscriber)
	}
	return s.subscriptionViews(ctx, subs, ids)
}

// SubscribedChannels 用户订阅的频道
func (s *AggregationService) SubscribedChannels(ctx context.Context, subscriberID string) ([]SubscriptionView, error) {
	if err := utils.ValidateIDs(subscriberID); err != nil {
		return nil, err
	}
	subs, err := s.store.Subscriptions.FindMany(ctx, docstore.Eq(model.FieldSubscriber, subscriberID),
		docstore.FindOptions{Sort: newestFirst})
	if err != nil {
		return nil, errno.Upstream(err)
	}
	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.Channel)
	}
	return s.subscriptionViews(ctx, subs, ids)
}

// subscriptionViews ids[i] 是 subs[i] 中要展示的那一方
func (s *AggregationService) subscriptionViews(ctx context.Context, subs []*model.Subscription, ids []string) ([]SubscriptionView, error) {
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]SubscriptionView, 0, len(subs))
	for i, sub := range subs {
		if _, ok := users[ids[i]]; !ok {
			continue
		}
		out = append(out, SubscriptionView{User: summary(users, ids[i]), SubscribedAt: sub.CreatedAt})
	}
	return out, nil
}
