package model

import "time"

const (
	FieldLikedBy    = "likedBy"
	FieldTargetKind = "target.kind"
	FieldTargetID   = "target.id"
)

// TargetKind 点赞目标类型
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetTweet   TargetKind = "tweet"
)

func (k TargetKind) Valid() bool {
	switch k {
	case TargetVideo, TargetComment, TargetTweet:
		return true
	}
	return false
}

type Comment struct {
	ID        string    `bson:"_id,omitempty" json:"_id"`
	Owner     string    `bson:"owner" json:"owner"`
	Video     string    `bson:"video" json:"video"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Tweet struct {
	ID        string    `bson:"_id,omitempty" json:"_id"`
	Owner     string    `bson:"owner" json:"owner"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// LikeTarget 点赞目标，kind 与 id 同时存在，保证一个 Like 只指向一个实体
type LikeTarget struct {
	Kind TargetKind `bson:"kind" json:"kind"`
	ID   string     `bson:"id" json:"id"`
}

type Like struct {
	ID        string     `bson:"_id,omitempty" json:"_id"`
	LikedBy   string     `bson:"likedBy" json:"likedBy"`
	Target    LikeTarget `bson:"target" json:"target"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
}
