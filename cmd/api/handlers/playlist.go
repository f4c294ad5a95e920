package handlers

import (
	"context"

	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
)

type PlaylistParam struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

func (h *Handler) CreatePlaylist(ctx context.Context, c *app.RequestContext) {
	var req PlaylistParam
	if err := c.BindAndValidate(&req); err != nil {
		SendResponse(c, errno.ParamErr.Wrap(err), nil)
		return
	}
	pl, err := h.Content.CreatePlaylist(ctx, actor(c), req.Name, req.Description)
	SendResponse(c, err, pl)
}

func (h *Handler) UpdatePlaylist(ctx context.Context, c *app.RequestContext) {
	var req PlaylistParam
	if err := c.BindAndValidate(&req); err != nil {
		SendResponse(c, errno.ParamErr.Wrap(err), nil)
		return
	}
	pl, err := h.Content.UpdatePlaylist(ctx, actor(c), c.Param("playlistId"), req.Name, req.Description)
	SendResponse(c, err, pl)
}

func (h *Handler) PlaylistDetail(ctx context.Context, c *app.RequestContext) {
	pl, err := h.Aggregation.PlaylistDetail(ctx, c.Param("playlistId"))
	SendResponse(c, err, pl)
}

func (h *Handler) UserPlaylists(ctx context.Context, c *app.RequestContext) {
	pls, err := h.Aggregation.UserPlaylists(ctx, c.Param("userId"))
	SendResponse(c, err, pls)
}

func (h *Handler) AddVideoToPlaylist(ctx context.Context, c *app.RequestContext) {
	pl, err := h.Content.AddVideoToPlaylist(ctx, actor(c), c.Param("playlistId"), c.Param("videoId"))
	SendResponse(c, err, pl)
}

func (h *Handler) RemoveVideoFromPlaylist(ctx context.Context, c *app.RequestContext) {
	pl, err := h.Content.RemoveVideoFromPlaylist(ctx, actor(c), c.Param("playlistId"), c.Param("videoId"))
	SendResponse(c, err, pl)
}

func (h *Handler) DeletePlaylist(ctx context.Context, c *app.RequestContext) {
	report, err := h.Cascade.RemovePlaylist(ctx, actor(c), c.Param("playlistId"))
	SendResponse(c, err, report)
}
