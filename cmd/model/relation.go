package model

import "time"

const (
	FieldSubscriber = "subscriber"
	FieldChannel    = "channel"
)

// Subscription 订阅关系，subscriber 关注 channel，二者不相等
type Subscription struct {
	ID         string    `bson:"_id,omitempty" json:"_id"`
	Subscriber string    `bson:"subscriber" json:"subscriber"`
	Channel    string    `bson:"channel" json:"channel"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
