package service

import (
	"context"
	"testing"
	"time"

	"VidTube.com/cmd/dal"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx   context.Context
	mem   *docstore.Memory
	store *dal.Store
	svc   *AggregationService
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := docstore.NewMemory()
	store, err := dal.NewMemoryStore(mem)
	require.NoError(t, err)
	return &fixture{
		ctx:   context.Background(),
		mem:   mem,
		store: store,
		svc:   NewAggregationService(store),
		clock: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) now() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     name,
		Email:        name + "@vidtube.dev",
		FullName:     "Full " + name,
		Avatar:       "memory://blob/picture/" + name + ".png",
		WatchHistory: []string{},
		CreatedAt:    f.now(),
	}
	_, err := f.store.Users.Insert(f.ctx, u)
	require.NoError(t, err)
	return u
}

func (f *fixture) video(t *testing.T, owner string, views int64, published bool) *model.Video {
	t.Helper()
	v := &model.Video{Owner: owner, Title: "video", Views: views, IsPublished: published, CreatedAt: f.now()}
	_, err := f.store.Videos.Insert(f.ctx, v)
	require.NoError(t, err)
	return v
}

func (f *fixture) comment(t *testing.T, owner, video, content string) *model.Comment {
	t.Helper()
	c := &model.Comment{Owner: owner, Video: video, Content: content, CreatedAt: f.now()}
	_, err := f.store.Comments.Insert(f.ctx, c)
	require.NoError(t, err)
	return c
}

func (f *fixture) tweet(t *testing.T, owner string) *model.Tweet {
	t.Helper()
	tw := &model.Tweet{Owner: owner, Content: "tweet", CreatedAt: f.now()}
	_, err := f.store.Tweets.Insert(f.ctx, tw)
	require.NoError(t, err)
	return tw
}

func (f *fixture) like(t *testing.T, by string, kind model.TargetKind, target string) {
	t.Helper()
	_, err := f.store.Likes.Insert(f.ctx, &model.Like{LikedBy: by, Target: model.LikeTarget{Kind: kind, ID: target}, CreatedAt: f.now()})
	require.NoError(t, err)
}

func (f *fixture) subscribe(t *testing.T, subscriber, channel string) {
	t.Helper()
	_, err := f.store.Subscriptions.Insert(f.ctx, &model.Subscription{Subscriber: subscriber, Channel: channel, CreatedAt: f.now()})
	require.NoError(t, err)
}
