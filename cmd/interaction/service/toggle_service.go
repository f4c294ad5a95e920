package service

import (
	"context"
	"errors"
	"time"

	"VidTube.com/cmd/dal"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
)

// ToggleResult 切换后的状态
type ToggleResult string

const (
	Added   ToggleResult = "added"
	Removed ToggleResult = "removed"
)

// ToggleService 点赞与订阅的开关操作
// 先查后写，并发下由存储的唯一索引兜底：插入撞上唯一键说明另一请求已经加上，按 added 返回
type ToggleService struct {
	store    *dal.Store
	producer mq.MessageProducer
}

func NewToggleService(store *dal.Store, producer mq.MessageProducer) *ToggleService {
	if producer == nil {
		producer = mq.NopProducer{}
	}
	return &ToggleService{store: store, producer: producer}
}

// toggle 通用的查找-删除 / 校验-插入流程
func toggle[T any](ctx context.Context, coll docstore.Collection[T], key docstore.Filter, id func(*T) string,
	targetExists func(ctx context.Context) error, build func() *T) (ToggleResult, error) {
	existing, err := coll.FindOne(ctx, key)
	switch {
	case err == nil:
		if _, err := coll.DeleteByID(ctx, id(existing)); err != nil {
			return "", errno.Upstream(err)
		}
		return Removed, nil
	case !errors.Is(err, docstore.ErrNoDocuments):
		return "", errno.Upstream(err)
	}

	// 插入前重新读取目标，避免产生悬空引用
	if err := targetExists(ctx); err != nil {
		return "", err
	}
	if _, err := coll.Insert(ctx, build()); err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			hlog.CtxInfof(ctx, "toggle on %s lost insert race, treating as added", coll.Name())
			return Added, nil
		}
		return "", errno.Upstream(err)
	}
	return Added, nil
}

func mustExist[T any](coll docstore.Collection[T], id, what string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := coll.FindByID(ctx, id)
		if errors.Is(err, docstore.ErrNoDocuments) {
			return errno.NotFoundErr.WithMessage(what + " not found: " + id)
		}
		if err != nil {
			return errno.Upstream(err)
		}
		return nil
	}
}

// ToggleLike 已点赞则取消，否则点赞
func (s *ToggleService) ToggleLike(ctx context.Context, actor string, kind model.TargetKind, targetID string) (ToggleResult, error) {
	if !kind.Valid() {
		return "", errno.InvalidReferenceErr.WithMessage("unknown like target kind: " + string(kind))
	}
	if err := utils.ValidateIDs(actor, targetID); err != nil {
		return "", err
	}

	var exists func(ctx context.Context) error
	switch kind {
	case model.TargetVideo:
		exists = mustExist(s.store.Videos, targetID, "video")
	case model.TargetComment:
		exists = mustExist(s.store.Comments, targetID, "comment")
	case model.TargetTweet:
		exists = mustExist(s.store.Tweets, targetID, "tweet")
	}

	key := docstore.And(
		docstore.Eq(model.FieldLikedBy, actor),
		docstore.Eq(model.FieldTargetKind, string(kind)),
		docstore.Eq(model.FieldTargetID, targetID),
	)
	result, err := toggle(ctx, s.store.Likes, key, func(l *model.Like) string { return l.ID }, exists, func() *model.Like {
		return &model.Like{
			LikedBy:   actor,
			Target:    model.LikeTarget{Kind: kind, ID: targetID},
			CreatedAt: time.Now(),
		}
	})
	if err != nil {
		hlog.CtxErrorf(ctx, "Failed to toggle like %s/%s by %s: %v", kind, targetID, actor, err)
		return "", err
	}

	event := &mq.LikeEvent{
		EventID:    uuid.New().String(),
		ActorID:    actor,
		TargetKind: string(kind),
		TargetID:   targetID,
		Action:     string(result),
		Timestamp:  time.Now().Unix(),
	}
	if err := s.producer.PublishLikeEvent(ctx, event); err != nil {
		hlog.CtxWarnf(ctx, "Failed to publish like event: %v", err)
	}
	return result, nil
}

// ToggleSubscription 已订阅则取消，否则订阅；不能订阅自己
func (s *ToggleService) ToggleSubscription(ctx context.Context, subscriber, channel string) (ToggleResult, error) {
	if err := utils.ValidateIDs(subscriber, channel); err != nil {
		return "", err
	}
	if subscriber == channel {
		return "", errno.InvalidOperationErr.WithMessage("cannot subscribe to your own channel")
	}

	key := docstore.And(
		docstore.Eq(model.FieldSubscriber, subscriber),
		docstore.Eq(model.FieldChannel, channel),
	)
	result, err := toggle(ctx, s.store.Subscriptions, key, func(sub *model.Subscription) string { return sub.ID },
		mustExist(s.store.Users, channel, "channel"), func() *model.Subscription {
			return &model.Subscription{Subscriber: subscriber, Channel: channel, CreatedAt: time.Now()}
		})
	if err != nil {
		hlog.CtxErrorf(ctx, "Failed to toggle subscription %s -> %s: %v", subscriber, channel, err)
		return "", err
	}

	event := &mq.SubscriptionEvent{
		EventID:      uuid.New().String(),
		SubscriberID: subscriber,
		ChannelID:    channel,
		Action:       string(result),
		Timestamp:    time.Now().Unix(),
	}
	if err := s.producer.PublishSubscriptionEvent(ctx, event); err != nil {
		hlog.CtxWarnf(ctx, "Failed to publish subscription event: %v", err)
	}
	return result, nil
}
