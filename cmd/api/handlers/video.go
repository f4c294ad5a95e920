package handlers

import (
	"context"

	content "VidTube.com/cmd/content/service"
	"github.com/cloudwego/hertz/pkg/app"
)

func (h *Handler) PublishVideo(ctx context.Context, c *app.RequestContext) {
	media, err := formFile(c, "videoFile")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	thumbnail, err := formFile(c, "thumbnail")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	video, err := h.Content.PublishVideo(ctx, &content.PublishRequest{
		Owner:       actor(c),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Media:       media,
		Thumbnail:   thumbnail,
		Duration:    parseFloat(c.PostForm("duration")),
	})
	SendResponse(c, err, video)
}

func (h *Handler) WatchVideo(ctx context.Context, c *app.RequestContext) {
	detail, err := h.Content.WatchVideo(ctx, actor(c), c.Param("videoId"))
	SendResponse(c, err, detail)
}

func (h *Handler) UpdateVideo(ctx context.Context, c *app.RequestContext) {
	thumbnail, err := formFile(c, "thumbnail")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	video, err := h.Content.UpdateVideo(ctx, actor(c), c.Param("videoId"), c.PostForm("title"), c.PostForm("description"), thumbnail)
	SendResponse(c, err, video)
}

func (h *Handler) TogglePublish(ctx context.Context, c *app.RequestContext) {
	video, err := h.Content.TogglePublishStatus(ctx, actor(c), c.Param("videoId"))
	SendResponse(c, err, video)
}

func (h *Handler) DeleteVideo(ctx context.Context, c *app.RequestContext) {
	report, err := h.Cascade.RemoveVideo(ctx, actor(c), c.Param("videoId"))
	SendResponse(c, err, report)
}

// ChannelVideos 查询参数 page / limit / sortBy / sortType
func (h *Handler) ChannelVideos(ctx context.Context, c *app.RequestContext) {
	page, limit := pageParams(c)
	videos, err := h.Aggregation.ChannelVideos(ctx, c.Param("channelId"), viewer(c), page, limit, c.Query("sortBy"), c.Query("sortType"))
	SendResponse(c, err, videos)
}

func (h *Handler) AddToWatchHistory(ctx context.Context, c *app.RequestContext) {
	err := h.Content.AddToWatchHistory(ctx, actor(c), c.Param("videoId"))
	SendResponse(c, err, nil)
}
