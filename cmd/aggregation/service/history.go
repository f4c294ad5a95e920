package service

import (
	"context"

	"VidTube.com/pkg/utils"
)

// WatchHistory 按记录顺序返回观看过的视频，已删除的视频跳过，不会重复
func (s *AggregationService) WatchHistory(ctx context.Context, userID string) ([]VideoView, error) {
	if err := utils.ValidateIDs(userID); err != nil {
		return nil, err
	}
	user, err := mustFind(ctx, s.store.Users, userID, "user")
	if err != nil {
		return nil, err
	}
	return s.resolveVideos(ctx, user.WatchHistory, false)
}
