package handlers

import (
	"context"

	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
)

type ContentParam struct {
	Content string `json:"content" form:"content"`
}

func bindContent(c *app.RequestContext) (string, error) {
	var req ContentParam
	if err := c.BindAndValidate(&req); err != nil {
		return "", errno.ParamErr.Wrap(err)
	}
	return req.Content, nil
}

func (h *Handler) VideoComments(ctx context.Context, c *app.RequestContext) {
	page, limit := pageParams(c)
	comments, err := h.Aggregation.VideoComments(ctx, c.Param("videoId"), viewer(c), page, limit)
	SendResponse(c, err, comments)
}

func (h *Handler) AddComment(ctx context.Context, c *app.RequestContext) {
	text, err := bindContent(c)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	comment, err := h.Content.AddComment(ctx, actor(c), c.Param("videoId"), text)
	SendResponse(c, err, comment)
}

func (h *Handler) UpdateComment(ctx context.Context, c *app.RequestContext) {
	text, err := bindContent(c)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	comment, err := h.Content.UpdateComment(ctx, actor(c), c.Param("commentId"), text)
	SendResponse(c, err, comment)
}

func (h *Handler) DeleteComment(ctx context.Context, c *app.RequestContext) {
	report, err := h.Cascade.RemoveComment(ctx, actor(c), c.Param("commentId"))
	SendResponse(c, err, report)
}

func (h *Handler) CreateTweet(ctx context.Context, c *app.RequestContext) {
	text, err := bindContent(c)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	tweet, err := h.Content.CreateTweet(ctx, actor(c), text)
	SendResponse(c, err, tweet)
}

func (h *Handler) UpdateTweet(ctx context.Context, c *app.RequestContext) {
	text, err := bindContent(c)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	tweet, err := h.Content.UpdateTweet(ctx, actor(c), c.Param("tweetId"), text)
	SendResponse(c, err, tweet)
}

func (h *Handler) DeleteTweet(ctx context.Context, c *app.RequestContext) {
	report, err := h.Cascade.RemoveTweet(ctx, actor(c), c.Param("tweetId"))
	SendResponse(c, err, report)
}

func (h *Handler) UserTweets(ctx context.Context, c *app.RequestContext) {
	page, limit := pageParams(c)
	tweets, err := h.Aggregation.UserTweets(ctx, c.Param("userId"), page, limit)
	SendResponse(c, err, tweets)
}
