package handlers

import (
	"context"

	content "VidTube.com/cmd/content/service"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
)

type AccountParam struct {
	FullName string `json:"fullName" form:"fullName"`
	Email    string `json:"email" form:"email"`
}

func (h *Handler) Register(ctx context.Context, c *app.RequestContext) {
	avatar, err := formFile(c, "avatar")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	cover, err := formFile(c, "coverImage")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	user, err := h.Content.RegisterUser(ctx, &content.RegisterRequest{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		FullName: c.PostForm("fullName"),
		Password: c.PostForm("password"),
		Avatar:   avatar,
		Cover:    cover,
	})
	SendResponse(c, err, user)
}

func (h *Handler) UpdateAccount(ctx context.Context, c *app.RequestContext) {
	var req AccountParam
	if err := c.BindAndValidate(&req); err != nil {
		SendResponse(c, errno.ParamErr.Wrap(err), nil)
		return
	}
	user, err := h.Content.UpdateAccount(ctx, actor(c), req.FullName, req.Email)
	SendResponse(c, err, user)
}

func (h *Handler) UpdateAvatar(ctx context.Context, c *app.RequestContext) {
	data, err := formFile(c, "avatar")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	user, err := h.Content.UpdateAvatar(ctx, actor(c), data)
	SendResponse(c, err, user)
}

func (h *Handler) UpdateCover(ctx context.Context, c *app.RequestContext) {
	data, err := formFile(c, "coverImage")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	user, err := h.Content.UpdateCover(ctx, actor(c), data)
	SendResponse(c, err, user)
}

func (h *Handler) ChannelProfile(ctx context.Context, c *app.RequestContext) {
	profile, err := h.Aggregation.ChannelProfile(ctx, c.Param("username"), viewer(c))
	SendResponse(c, err, profile)
}

func (h *Handler) WatchHistory(ctx context.Context, c *app.RequestContext) {
	history, err := h.Aggregation.WatchHistory(ctx, actor(c))
	SendResponse(c, err, history)
}

func (h *Handler) DeleteUser(ctx context.Context, c *app.RequestContext) {
	report, err := h.Cascade.RemoveUser(ctx, actor(c), c.Param("userId"))
	SendResponse(c, err, report)
}

func (h *Handler) Dashboard(ctx context.Context, c *app.RequestContext) {
	d, err := h.Aggregation.Dashboard(ctx, actor(c))
	SendResponse(c, err, d)
}

func (h *Handler) ChannelStats(ctx context.Context, c *app.RequestContext) {
	stats, err := h.Aggregation.ChannelStats(ctx, actor(c))
	SendResponse(c, err, stats)
}
