package model

import "time"

const (
	FieldID           = "_id"
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldWatchHistory = "watchHistory"
	FieldCreatedAt    = "createdAt"
)

// User 用户文档；username 已小写，username 与 email 唯一
type User struct {
	ID           string    `bson:"_id,omitempty" json:"_id"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	FullName     string    `bson:"fullName" json:"fullName"`
	Password     string    `bson:"password" json:"-"`
	Avatar       string    `bson:"avatar" json:"avatar"`
	CoverImage   string    `bson:"coverImage" json:"coverImage"`
	WatchHistory []string  `bson:"watchHistory" json:"watchHistory"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary 聚合视图中嵌入的用户摘要
type UserSummary struct {
	ID          string `json:"_id"`
	DisplayName string `json:"fullName"`
	Handle      string `json:"username"`
	Avatar      string `json:"avatar,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, DisplayName: u.FullName, Handle: u.Username, Avatar: u.Avatar}
}
