package mq

// LikeEvent 点赞状态变化事件
type LikeEvent struct {
	EventID    string `json:"event_id"`
	ActorID    string `json:"actor_id"`
	TargetKind string `json:"target_kind"` // video, comment, tweet
	TargetID   string `json:"target_id"`
	Action     string `json:"action"` // added, removed
	Timestamp  int64  `json:"timestamp"`
}

// SubscriptionEvent 订阅状态变化事件
type SubscriptionEvent struct {
	EventID      string `json:"event_id"`
	SubscriberID string `json:"subscriber_id"`
	ChannelID    string `json:"channel_id"`
	Action       string `json:"action"`
	Timestamp    int64  `json:"timestamp"`
}

// CascadeEvent 级联删除结束事件，失败时 Error 非空
type CascadeEvent struct {
	EventID   string           `json:"event_id"`
	RunID     string           `json:"run_id"`
	RootKind  string           `json:"root_kind"`
	RootID    string           `json:"root_id"`
	Status    string           `json:"status"`
	Deleted   map[string]int64 `json:"deleted,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

const (
	LikeEventExchange         = "like_events"
	SubscriptionEventExchange = "subscription_events"
	CascadeEventExchange      = "cascade_events"

	LikeEventQueue         = "like_event_queue"
	SubscriptionEventQueue = "subscription_event_queue"
	CascadeEventQueue      = "cascade_event_queue"
)
