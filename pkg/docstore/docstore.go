package docstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoDocuments  = errors.New("docstore: no documents in result")
	ErrDuplicateKey = errors.New("docstore: duplicate key")
	ErrMixedUpdate  = errors.New("docstore: MoveToEnd can only be combined with Set")
)

// Collection 单个集合的读写接口，所有写操作在单文档上原子
type Collection[T any] interface {
	Name() string
	// Insert 写入文档并回填 _id
	Insert(ctx context.Context, doc *T) (string, error)
	FindByID(ctx context.Context, id string) (*T, error)
	FindOne(ctx context.Context, filter Filter) (*T, error)
	FindMany(ctx context.Context, filter Filter, opts FindOptions) ([]*T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// UpdateByID 文档不存在时返回 false
	UpdateByID(ctx context.Context, id string, update Update) (bool, error)
	UpdateMany(ctx context.Context, filter Filter, update Update) (int64, error)
	// DeleteByID 文档不存在时返回 false
	DeleteByID(ctx context.Context, id string) (bool, error)
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
}

type SortField struct {
	Field string
	Desc  bool
}

// FindOptions Limit 为 0 表示不限制；排序键相同时按 _id 升序
type FindOptions struct {
	Sort  []SortField
	Skip  int64
	Limit int64
}

// Index 集合索引定义
type Index struct {
	Name   string
	Fields []string
	Unique bool
}

// Update 单次更新的各类操作，空字段忽略
// MoveToEnd 把值从数组中移除后追加到末尾，整个更新一次完成；只能与 Set 组合
type Update struct {
	Set       bson.M
	Inc       bson.M
	AddToSet  bson.M
	Push      bson.M
	Pull      bson.M
	MoveToEnd bson.M
}

func (u Update) IsZero() bool {
	return len(u.Set) == 0 && len(u.Inc) == 0 && len(u.AddToSet) == 0 && len(u.Push) == 0 && len(u.Pull) == 0 &&
		len(u.MoveToEnd) == 0
}

func (u Update) validate() error {
	if len(u.MoveToEnd) > 0 && (len(u.Inc) > 0 || len(u.AddToSet) > 0 || len(u.Push) > 0 || len(u.Pull) > 0) {
		return ErrMixedUpdate
	}
	return nil
}

// Document 转成 mongo 的更新文档；含 MoveToEnd 时返回聚合管道
func (u Update) Document() (interface{}, error) {
	if err := u.validate(); err != nil {
		return nil, err
	}
	if len(u.MoveToEnd) > 0 {
		return u.pipeline(), nil
	}
	doc := bson.M{}
	if len(u.Set) > 0 {
		doc["$set"] = u.Set
	}
	if len(u.Inc) > 0 {
		doc["$inc"] = u.Inc
	}
	if len(u.AddToSet) > 0 {
		doc["$addToSet"] = u.AddToSet
	}
	if len(u.Push) > 0 {
		doc["$push"] = u.Push
	}
	if len(u.Pull) > 0 {
		doc["$pull"] = u.Pull
	}
	return doc, nil
}

func (u Update) pipeline() bson.A {
	set := bson.M{}
	for k, v := range u.Set {
		set[k] = bson.M{"$literal": v}
	}
	for k, v := range u.MoveToEnd {
		set[k] = bson.M{"$concatArrays": bson.A{
			bson.M{"$filter": bson.M{
				"input": bson.M{"$ifNull": bson.A{"$" + k, bson.A{}}},
				"cond":  bson.M{"$ne": bson.A{"$$this", bson.M{"$literal": v}}},
			}},
			bson.A{bson.M{"$literal": v}},
		}}
	}
	return bson.A{bson.M{"$set": set}}
}

func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID 24 位小写十六进制
func IsValidID(id string) bool {
	if len(id) != 24 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return primitive.IsValidObjectID(id)
}

// ToDocument 把实体编码为 bson.M，缺少 _id 时分配新 id
func ToDocument(doc any) (bson.M, string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, "", err
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, "", err
	}
	id, _ := m["_id"].(string)
	if id == "" {
		id = NewID()
		m["_id"] = id
	}
	return m, id, nil
}

// FromDocument 把 bson.M 解码回实体
func FromDocument(m bson.M, out any) error {
	raw, err := bson.Marshal(m)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}
