package service

import (
	"context"
	"errors"

	"VidTube.com/cmd/dal"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
)

// AggregationService 组装只读视图：先取主集合一页，再按外键集合各查一次，最后在内存中拼接
type AggregationService struct {
	store *dal.Store
}

func NewAggregationService(store *dal.Store) *AggregationService {
	return &AggregationService{store: store}
}

var newestFirst = []docstore.SortField{{Field: model.FieldCreatedAt, Desc: true}}

func pageOptions(page, limit int64, sort []docstore.SortField) docstore.FindOptions {
	return docstore.FindOptions{Sort: sort, Skip: (page - 1) * limit, Limit: limit}
}

// unique 去重并保持首次出现的顺序
func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// byID 把批量查询结果转成 id -> 文档
func byID[T any](docs []*T, id func(*T) string) map[string]*T {
	m := make(map[string]*T, len(docs))
	for _, d := range docs {
		m[id(d)] = d
	}
	return m
}

// findIn 对 ids 做一次 In 查询，ids 为空时不访问存储
func findIn[T any](ctx context.Context, coll docstore.Collection[T], field string, ids []string, extra ...docstore.Filter) ([]*T, error) {
	if len(ids) == 0 {
		return []*T{}, nil
	}
	filter := docstore.And(append([]docstore.Filter{docstore.In(field, ids)}, extra...)...)
	docs, err := coll.FindMany(ctx, filter, docstore.FindOptions{})
	if err != nil {
		return nil, errno.Upstream(err)
	}
	return docs, nil
}

func (s *AggregationService) usersByID(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users, err := findIn(ctx, s.store.Users, model.FieldID, unique(ids))
	if err != nil {
		return nil, err
	}
	return byID(users, func(u *model.User) string { return u.ID }), nil
}

// likeIndex 一类目标上的点赞统计
type likeIndex struct {
	counts map[string]int64
	likers map[string][]string
}

func (s *AggregationService) likesOn(ctx context.Context, kind model.TargetKind, targetIDs []string) (*likeIndex, error) {
	likes, err := findIn(ctx, s.store.Likes, model.FieldTargetID, unique(targetIDs),
		docstore.Eq(model.FieldTargetKind, string(kind)))
	if err != nil {
		return nil, err
	}
	idx := &likeIndex{counts: make(map[string]int64), likers: make(map[string][]string)}
	for _, l := range likes {
		idx.counts[l.Target.ID]++
		idx.likers[l.Target.ID] = append(idx.likers[l.Target.ID], l.LikedBy)
	}
	return idx, nil
}

func (idx *likeIndex) allLikers() []string {
	var out []string
	for _, ids := range idx.likers {
		out = append(out, ids...)
	}
	return out
}

// summary 用户已被删除时返回只有 id 的摘要
func summary(users map[string]*model.User, id string) model.UserSummary {
	if u, ok := users[id]; ok {
		return u.Summary()
	}
	return model.UserSummary{ID: id}
}

func displayNames(users map[string]*model.User, ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			names = append(names, u.FullName)
		}
	}
	return names
}

func mustFind[T any](ctx context.Context, coll docstore.Collection[T], id, what string) (*T, error) {
	doc, err := coll.FindByID(ctx, id)
	if errors.Is(err, docstore.ErrNoDocuments) {
		return nil, errno.NotFoundErr.WithMessage(what + " not found: " + id)
	}
	if err != nil {
		return nil, errno.Upstream(err)
	}
	return doc, nil
}

func videoView(v *model.Video, users map[string]*model.User, likes *likeIndex) VideoView {
	view := VideoView{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
		Owner:       summary(users, v.Owner),
		CreatedAt:   v.CreatedAt,
	}
	if likes != nil {
		view.LikeCount = likes.counts[v.ID]
	}
	return view
}

// resolveVideos 按 ids 顺序返回视频视图，缺失的视频跳过
func (s *AggregationService) resolveVideos(ctx context.Context, ids []string, withLikes bool) ([]VideoView, error) {
	ids = unique(ids)
	videos, err := findIn(ctx, s.store.Videos, model.FieldID, ids)
	if err != nil {
		return nil, err
	}
	owners := make([]string, 0, len(videos))
	for _, v := range videos {
		owners = append(owners, v.Owner)
	}
	users, err := s.usersByID(ctx, owners)
	if err != nil {
		return nil, err
	}
	var likes *likeIndex
	if withLikes {
		if likes, err = s.likesOn(ctx, model.TargetVideo, ids); err != nil {
			return nil, err
		}
	}
	m := byID(videos, func(v *model.Video) string { return v.ID })
	out := make([]VideoView, 0, len(ids))
	for _, id := range ids {
		if v, ok := m[id]; ok {
			out = append(out, videoView(v, users, likes))
		}
	}
	return out, nil
}
