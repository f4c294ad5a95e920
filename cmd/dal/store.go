package dal

import (
	"context"
	"time"

	"VidTube.com/cmd/model"
	"VidTube.com/config"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/docstore/mongostore"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store 各集合的句柄，由调用方显式注入到各组件
type Store struct {
	Users         docstore.Collection[model.User]
	Videos        docstore.Collection[model.Video]
	Comments      docstore.Collection[model.Comment]
	Tweets        docstore.Collection[model.Tweet]
	Likes         docstore.Collection[model.Like]
	Playlists     docstore.Collection[model.Playlist]
	Subscriptions docstore.Collection[model.Subscription]

	client *mongo.Client
}

// Indexes 每个集合需要的索引
var Indexes = map[string][]docstore.Index{
	constants.UserCollection: {
		{Name: "username_unique", Fields: []string{model.FieldUsername}, Unique: true},
		{Name: "email_unique", Fields: []string{model.FieldEmail}, Unique: true},
	},
	constants.VideoCollection: {
		{Name: "owner_createdAt", Fields: []string{model.FieldOwner, model.FieldCreatedAt}},
	},
	constants.CommentCollection: {
		{Name: "video_createdAt", Fields: []string{model.FieldVideo, model.FieldCreatedAt}},
		{Name: "owner", Fields: []string{model.FieldOwner}},
	},
	constants.TweetCollection: {
		{Name: "owner_createdAt", Fields: []string{model.FieldOwner, model.FieldCreatedAt}},
	},
	constants.LikeCollection: {
		{Name: "likedBy_target_unique", Fields: []string{model.FieldLikedBy, model.FieldTargetKind, model.FieldTargetID}, Unique: true},
		{Name: "target", Fields: []string{model.FieldTargetKind, model.FieldTargetID}},
	},
	constants.PlaylistCollection: {
		{Name: "owner", Fields: []string{model.FieldOwner}},
		{Name: "videos", Fields: []string{model.FieldVideos}},
	},
	constants.SubscriptionCollection: {
		{Name: "subscriber_channel_unique", Fields: []string{model.FieldSubscriber, model.FieldChannel}, Unique: true},
		{Name: "channel", Fields: []string{model.FieldChannel}},
	},
}

// NewMemoryStore 基于进程内存储构造 Store，测试与本地调试使用
func NewMemoryStore(m *docstore.Memory) (*Store, error) {
	for name, idx := range Indexes {
		if err := m.EnsureIndexes(name, idx...); err != nil {
			return nil, err
		}
	}
	return &Store{
		Users:         docstore.NewMemoryCollection[model.User](m, constants.UserCollection),
		Videos:        docstore.NewMemoryCollection[model.Video](m, constants.VideoCollection),
		Comments:      docstore.NewMemoryCollection[model.Comment](m, constants.CommentCollection),
		Tweets:        docstore.NewMemoryCollection[model.Tweet](m, constants.TweetCollection),
		Likes:         docstore.NewMemoryCollection[model.Like](m, constants.LikeCollection),
		Playlists:     docstore.NewMemoryCollection[model.Playlist](m, constants.PlaylistCollection),
		Subscriptions: docstore.NewMemoryCollection[model.Subscription](m, constants.SubscriptionCollection),
	}, nil
}

// NewMongoStore 连接 mongo 并确保索引存在
func NewMongoStore(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	client, err := mongostore.Connect(ctx, uri, timeout)
	if err != nil {
		return nil, err
	}
	db := client.Database(database)
	for name, idx := range Indexes {
		if err := mongostore.EnsureIndexes(ctx, db.Collection(name), idx...); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}
	hlog.CtxInfof(ctx, "mongo store ready: %s", database)
	return &Store{
		Users:         mongostore.New[model.User](db.Collection(constants.UserCollection)),
		Videos:        mongostore.New[model.Video](db.Collection(constants.VideoCollection)),
		Comments:      mongostore.New[model.Comment](db.Collection(constants.CommentCollection)),
		Tweets:        mongostore.New[model.Tweet](db.Collection(constants.TweetCollection)),
		Likes:         mongostore.New[model.Like](db.Collection(constants.LikeCollection)),
		Playlists:     mongostore.New[model.Playlist](db.Collection(constants.PlaylistCollection)),
		Subscriptions: mongostore.New[model.Subscription](db.Collection(constants.SubscriptionCollection)),
		client:        client,
	}, nil
}

// Init 按配置打开 mongo 存储
func Init(ctx context.Context) (*Store, error) {
	timeout, err := time.ParseDuration(config.ConfigInfo.Mongo.Timeout)
	if err != nil {
		hlog.Warnf("Failed to parse mongo timeout %q: %v", config.ConfigInfo.Mongo.Timeout, err)
		timeout = 10 * time.Second
	}
	store, err := NewMongoStore(ctx, config.ConfigInfo.Mongo.URI, config.ConfigInfo.Mongo.Database, timeout)
	if err != nil {
		return nil, errors.WithMessage(err, "init document store")
	}
	return store, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
