package service

import (
	"context"
	"strings"
	"time"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
)

func playlistOwner(p *model.Playlist) string { return p.Owner }

func (s *ContentService) CreatePlaylist(ctx context.Context, actor, name, description string) (*model.Playlist, error) {
	if err := utils.ValidateIDs(actor); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"name": name}); err != nil {
		return nil, err
	}
	if _, err := find(ctx, s.store.Users, actor); err != nil {
		return nil, err
	}
	now := time.Now()
	pl := &model.Playlist{
		Owner:       actor,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Videos:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.store.Playlists.Insert(ctx, pl); err != nil {
		return nil, errno.Upstream(err)
	}
	return pl, nil
}

// UpdatePlaylist 只修改非空的字段
func (s *ContentService) UpdatePlaylist(ctx context.Context, actor, playlistID, name, description string) (*model.Playlist, error) {
	if _, err := findOwned(ctx, s.store.Playlists, playlistID, actor, playlistOwner); err != nil {
		return nil, err
	}
	set := bson.M{}
	if v := strings.TrimSpace(name); v != "" {
		set["name"] = v
	}
	if v := strings.TrimSpace(description); v != "" {
		set["description"] = v
	}
	if len(set) == 0 {
		return nil, errno.InvalidOperationErr.WithMessage("name or description is required")
	}
	return update(ctx, s.store.Playlists, playlistID, docstore.Update{Set: set})
}

// AddVideoToPlaylist 视频必须当前存在，已在列表中时不重复添加
func (s *ContentService) AddVideoToPlaylist(ctx context.Context, actor, playlistID, videoID string) (*model.Playlist, error) {
	if err := utils.ValidateIDs(videoID); err != nil {
		return nil, err
	}
	if _, err := findOwned(ctx, s.store.Playlists, playlistID, actor, playlistOwner); err != nil {
		return nil, err
	}
	if _, err := find(ctx, s.store.Videos, videoID); err != nil {
		return nil, err
	}
	return update(ctx, s.store.Playlists, playlistID, docstore.Update{AddToSet: bson.M{model.FieldVideos: videoID}})
}

func (s *ContentService) RemoveVideoFromPlaylist(ctx context.Context, actor, playlistID, videoID string) (*model.Playlist, error) {
	if err := utils.ValidateIDs(videoID); err != nil {
		return nil, err
	}
	pl, err := findOwned(ctx, s.store.Playlists, playlistID, actor, playlistOwner)
	if err != nil {
		return nil, err
	}
	var found bool
	for _, id := range pl.Videos {
		if id == videoID {
			found = true
			break
		}
	}
	if !found {
		return nil, errno.NotFoundErr.WithMessage("video is not in playlist: " + videoID)
	}
	return update(ctx, s.store.Playlists, playlistID, docstore.Update{Pull: bson.M{model.FieldVideos: videoID}})
}
