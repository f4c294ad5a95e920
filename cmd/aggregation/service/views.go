package service

import (
	"time"

	"VidTube.com/cmd/model"
)

// Page 分页结果，page 从 1 开始
type Page[T any] struct {
	Items       []T   `json:"docs"`
	Total       int64 `json:"totalDocs"`
	Page        int64 `json:"page"`
	Limit       int64 `json:"limit"`
	TotalPages  int64 `json:"totalPages"`
	HasNext     bool  `json:"hasNextPage"`
	HasPrevious bool  `json:"hasPrevPage"`
}

func newPage[T any](items []T, total, page, limit int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:       items,
		Total:       total,
		Page:        page,
		Limit:       limit,
		TotalPages:  (total + limit - 1) / limit,
		HasNext:     page*limit < total,
		HasPrevious: page > 1,
	}
}

type CommentView struct {
	ID        string            `json:"_id"`
	Video     string            `json:"video"`
	Content   string            `json:"content"`
	Owner     model.UserSummary `json:"owner"`
	LikeCount int64             `json:"likesCount"`
	LikedBy   []string          `json:"likedBy"`
	IsLiked   bool              `json:"isLiked"`
	CreatedAt time.Time         `json:"createdAt"`
}

type VideoView struct {
	ID          string            `json:"_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	VideoFile   string            `json:"videoFile"`
	Thumbnail   string            `json:"thumbnail"`
	Duration    float64           `json:"duration"`
	Views       int64             `json:"views"`
	IsPublished bool              `json:"isPublished"`
	Owner       model.UserSummary `json:"owner"`
	LikeCount   int64             `json:"likesCount"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type TweetView struct {
	ID        string            `json:"_id"`
	Content   string            `json:"content"`
	Owner     model.UserSummary `json:"owner"`
	LikeCount int64             `json:"likesCount"`
	LikedBy   []string          `json:"likedBy"`
	CreatedAt time.Time         `json:"createdAt"`
}

type ChannelProfile struct {
	ID                string    `json:"_id"`
	Username          string    `json:"username"`
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	Avatar            string    `json:"avatar"`
	CoverImage        string    `json:"coverImage"`
	SubscriberCount   int64     `json:"subscribersCount"`
	SubscribedToCount int64     `json:"channelsSubscribedToCount"`
	VideoCount        int64     `json:"videosCount"`
	IsSubscribed      bool      `json:"isSubscribed"`
	CreatedAt         time.Time `json:"createdAt"`
}

type ChannelStats struct {
	TotalVideoViews  int64 `json:"totalVideoViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalVideoLikes  int64 `json:"totalVideoLikes"`
}

type SubscriptionView struct {
	User         model.UserSummary `json:"user"`
	SubscribedAt time.Time         `json:"subscribedAt"`
}

type LikedItem[T any] struct {
	LikedAt time.Time `json:"likedAt"`
	Item    T         `json:"item"`
}

// LikeGroup 某条内容收到的点赞及点赞人
type LikeGroup struct {
	Kind      model.TargetKind    `json:"kind"`
	ContentID string              `json:"contentId"`
	Count     int64               `json:"count"`
	Likers    []model.UserSummary `json:"likers"`
}

type DashboardCounts struct {
	Videos       int64 `json:"videos"`
	Tweets       int64 `json:"tweets"`
	Comments     int64 `json:"comments"`
	Playlists    int64 `json:"playlists"`
	Subscribers  int64 `json:"subscribers"`
	SubscribedTo int64 `json:"subscribedTo"`
	TotalViews   int64 `json:"totalViews"`
	LikesGot     int64 `json:"likesReceived"`
}

type Dashboard struct {
	User               model.UserSummary   `json:"user"`
	Counts             DashboardCounts     `json:"counts"`
	Videos             []*model.Video      `json:"videos"`
	Tweets             []*model.Tweet      `json:"tweets"`
	Comments           []*model.Comment    `json:"comments"`
	Playlists          []*model.Playlist   `json:"playlists"`
	SubscribedChannels []model.UserSummary `json:"subscribedChannels"`
	LikesReceived      []LikeGroup         `json:"likesReceived"`
}

type PlaylistView struct {
	ID          string            `json:"_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Owner       model.UserSummary `json:"owner"`
	Videos      []VideoView       `json:"videos"`
	TotalVideos int               `json:"totalVideos"`
	TotalViews  int64             `json:"totalViews"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
