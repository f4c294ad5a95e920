package model

import "time"

const (
	FieldOwner       = "owner"
	FieldVideo       = "video"
	FieldViewCount   = "views"
	FieldIsPublished = "isPublished"
	FieldTitle       = "title"
	FieldDuration    = "duration"
)

type Video struct {
	ID          string    `bson:"_id,omitempty" json:"_id"`
	Owner       string    `bson:"owner" json:"owner"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	VideoFile   string    `bson:"videoFile" json:"videoFile"`
	Thumbnail   string    `bson:"thumbnail" json:"thumbnail"`
	Duration    float64   `bson:"duration" json:"duration"`
	Views       int64     `bson:"views" json:"views"`
	IsPublished bool      `bson:"isPublished" json:"isPublished"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Playlist struct {
	ID          string    `bson:"_id,omitempty" json:"_id"`
	Owner       string    `bson:"owner" json:"owner"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Videos      []string  `bson:"videos" json:"videos"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

const FieldVideos = "videos"
