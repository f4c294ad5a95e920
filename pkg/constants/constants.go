package constants

const (
	UserCollection         = "users"
	VideoCollection        = "videos"
	CommentCollection      = "comments"
	TweetCollection        = "tweets"
	LikeCollection         = "likes"
	PlaylistCollection     = "playlists"
	SubscriptionCollection = "subscriptions"

	CascadeRunTable = "cascade_runs"

	DefaultLimit = 10
	MaxLimit     = 100

	VideoBucket   = "video"
	PictureBucket = "picture"

	UserIdHeader = "X-User-Id"
	DataFormate  = "2006-01-02 15:04:05"
)
