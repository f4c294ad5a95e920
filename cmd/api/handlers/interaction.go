package handlers

import (
	"context"

	"VidTube.com/cmd/model"
	"github.com/cloudwego/hertz/pkg/app"
)

// likeKinds 路由里的简写
var likeKinds = map[string]model.TargetKind{
	"v": model.TargetVideo,
	"c": model.TargetComment,
	"t": model.TargetTweet,
}

type ToggleData struct {
	Status string `json:"status"`
}

// ToggleLike 路由 /likes/toggle/:kind/:targetId，kind 为 v / c / t
func (h *Handler) ToggleLike(ctx context.Context, c *app.RequestContext) {
	kind, ok := likeKinds[c.Param("kind")]
	if !ok {
		kind = model.TargetKind(c.Param("kind"))
	}
	res, err := h.Toggle.ToggleLike(ctx, actor(c), kind, c.Param("targetId"))
	SendResponse(c, err, ToggleData{Status: string(res)})
}

func (h *Handler) ToggleSubscription(ctx context.Context, c *app.RequestContext) {
	res, err := h.Toggle.ToggleSubscription(ctx, actor(c), c.Param("channelId"))
	SendResponse(c, err, ToggleData{Status: string(res)})
}

func (h *Handler) LikedVideos(ctx context.Context, c *app.RequestContext) {
	items, err := h.Aggregation.LikedVideos(ctx, actor(c))
	SendResponse(c, err, items)
}

func (h *Handler) LikedTweets(ctx context.Context, c *app.RequestContext) {
	items, err := h.Aggregation.LikedTweets(ctx, actor(c))
	SendResponse(c, err, items)
}

func (h *Handler) LikedComments(ctx context.Context, c *app.RequestContext) {
	items, err := h.Aggregation.LikedComments(ctx, actor(c))
	SendResponse(c, err, items)
}

func (h *Handler) ChannelSubscribers(ctx context.Context, c *app.RequestContext) {
	subs, err := h.Aggregation.ChannelSubscribers(ctx, actor(c), c.Param("channelId"))
	SendResponse(c, err, subs)
}

func (h *Handler) SubscribedChannels(ctx context.Context, c *app.RequestContext) {
	channels, err := h.Aggregation.SubscribedChannels(ctx, c.Param("subscriberId"))
	SendResponse(c, err, channels)
}
