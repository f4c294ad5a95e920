package mq

import "context"

// MessageProducer 消息生产者接口
type MessageProducer interface {
	PublishLikeEvent(ctx context.Context, event *LikeEvent) error
	PublishSubscriptionEvent(ctx context.Context, event *SubscriptionEvent) error
	PublishCascadeEvent(ctx context.Context, event *CascadeEvent) error
}

// 确保Producer实现MessageProducer接口
var _ MessageProducer = (*Producer)(nil)

var _ MessageProducer = NopProducer{}

// NopProducer 未配置消息队列时使用，丢弃所有事件
type NopProducer struct{}

func (NopProducer) PublishLikeEvent(context.Context, *LikeEvent) error { return nil }

func (NopProducer) PublishSubscriptionEvent(context.Context, *SubscriptionEvent) error { return nil }

func (NopProducer) PublishCascadeEvent(context.Context, *CascadeEvent) error { return nil }
