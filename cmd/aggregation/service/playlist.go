package service

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
)

// PlaylistDetail 播放列表及按列表顺序排列的视频，已删除的视频不出现
func (s *AggregationService) PlaylistDetail(ctx context.Context, playlistID string) (*PlaylistView, error) {
	if err := utils.ValidateIDs(playlistID); err != nil {
		return nil, err
	}
	pl, err := mustFind(ctx, s.store.Playlists, playlistID, "playlist")
	if err != nil {
		return nil, err
	}
	videos, err := s.resolveVideos(ctx, pl.Videos, true)
	if err != nil {
		return nil, err
	}
	users, err := s.usersByID(ctx, []string{pl.Owner})
	if err != nil {
		return nil, err
	}
	view := &PlaylistView{
		ID:          pl.ID,
		Name:        pl.Name,
		Description: pl.Description,
		Owner:       summary(users, pl.Owner),
		Videos:      videos,
		TotalVideos: len(videos),
		CreatedAt:   pl.CreatedAt,
		UpdatedAt:   pl.UpdatedAt,
	}
	for _, v := range videos {
		view.TotalViews += v.Views
	}
	return view, nil
}

// UserPlaylists 用户创建的播放列表
func (s *AggregationService) UserPlaylists(ctx context.Context, userID string) ([]*model.Playlist, error) {
	if err := utils.ValidateIDs(userID); err != nil {
		return nil, err
	}
	pls, err := s.store.Playlists.FindMany(ctx, docstore.Eq(model.FieldOwner, userID), docstore.FindOptions{Sort: newestFirst})
	if err != nil {
		return nil, errno.Upstream(err)
	}
	return pls, nil
}
