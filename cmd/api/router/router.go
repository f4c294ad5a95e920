package router

import (
	"VidTube.com/cmd/api/handlers"
	"github.com/cloudwego/hertz/pkg/app/server"
)

// Register 注册全部路由，除公开查询外都要求 X-User-Id
func Register(r *server.Hertz, h *handlers.Handler) {
	r.GET("/healthcheck", h.HealthCheck)

	v1 := r.Group("/api/v1")
	auth := handlers.RequireUser()

	users := v1.Group("/users")
	users.POST("/register", h.Register)
	users.GET("/c/:username", h.ChannelProfile)
	users.PATCH("/account", auth, h.UpdateAccount)
	users.PATCH("/avatar", auth, h.UpdateAvatar)
	users.PATCH("/cover-image", auth, h.UpdateCover)
	users.GET("/history", auth, h.WatchHistory)
	users.DELETE("/:userId", auth, h.DeleteUser)

	videos := v1.Group("/videos")
	videos.GET("/channel/:channelId", h.ChannelVideos)
	videos.POST("", auth, h.PublishVideo)
	videos.GET("/:videoId", auth, h.WatchVideo)
	videos.PATCH("/:videoId", auth, h.UpdateVideo)
	videos.DELETE("/:videoId", auth, h.DeleteVideo)
	videos.PATCH("/toggle/publish/:videoId", auth, h.TogglePublish)
	videos.POST("/history/:videoId", auth, h.AddToWatchHistory)

	comments := v1.Group("/comments")
	comments.GET("/:videoId", h.VideoComments)
	comments.POST("/:videoId", auth, h.AddComment)
	comments.PATCH("/c/:commentId", auth, h.UpdateComment)
	comments.DELETE("/c/:commentId", auth, h.DeleteComment)

	tweets := v1.Group("/tweets")
	tweets.GET("/user/:userId", h.UserTweets)
	tweets.POST("", auth, h.CreateTweet)
	tweets.PATCH("/:tweetId", auth, h.UpdateTweet)
	tweets.DELETE("/:tweetId", auth, h.DeleteTweet)

	likes := v1.Group("/likes", auth)
	likes.POST("/toggle/:kind/:targetId", h.ToggleLike)
	likes.GET("/videos", h.LikedVideos)
	likes.GET("/tweets", h.LikedTweets)
	likes.GET("/comments", h.LikedComments)

	subs := v1.Group("/subscriptions")
	subs.GET("/u/:subscriberId", h.SubscribedChannels)
	subs.POST("/c/:channelId", auth, h.ToggleSubscription)
	subs.GET("/c/:channelId", auth, h.ChannelSubscribers)

	playlists := v1.Group("/playlist")
	playlists.GET("/:playlistId", h.PlaylistDetail)
	playlists.GET("/user/:userId", h.UserPlaylists)
	playlists.POST("", auth, h.CreatePlaylist)
	playlists.PATCH("/:playlistId", auth, h.UpdatePlaylist)
	playlists.DELETE("/:playlistId", auth, h.DeletePlaylist)
	playlists.PATCH("/add/:videoId/:playlistId", auth, h.AddVideoToPlaylist)
	playlists.PATCH("/remove/:videoId/:playlistId", auth, h.RemoveVideoFromPlaylist)

	dashboard := v1.Group("/dashboard", auth)
	dashboard.GET("", h.Dashboard)
	dashboard.GET("/stats", h.ChannelStats)
}
