package service

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/sync/errgroup"
)

// VideoComments 视频评论，按时间倒序分页，附带评论人、点赞数与点赞人
// viewer 可为空，非空时计算 IsLiked
func (s *AggregationService) VideoComments(ctx context.Context, videoID, viewer string, page, limit int64) (*Page[CommentView], error) {
	if err := utils.ValidateIDs(videoID); err != nil {
		return nil, err
	}
	if viewer != "" {
		if err := utils.ValidateIDs(viewer); err != nil {
			return nil, err
		}
	}
	page, limit = utils.NormalizePage(page, limit)
	if _, err := mustFind(ctx, s.store.Videos, videoID, "video"); err != nil {
		return nil, err
	}

	filter := docstore.Eq(model.FieldVideo, videoID)
	var (
		total    int64
		comments []*model.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.store.Comments.Count(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		comments, err = s.store.Comments.FindMany(gctx, filter, pageOptions(page, limit, newestFirst))
		return err
	})
	if err := g.Wait(); err != nil {
		hlog.CtxErrorf(ctx, "load comments of video %s failed: %v", videoID, err)
		return nil, errno.Upstream(err)
	}

	commentIDs := make([]string, 0, len(comments))
	owners := make([]string, 0, len(comments))
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
		owners = append(owners, c.Owner)
	}
	likes, err := s.likesOn(ctx, model.TargetComment, commentIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.usersByID(ctx, append(owners, likes.allLikers()...))
	if err != nil {
		return nil, err
	}

	items := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		likers := likes.likers[c.ID]
		view := CommentView{
			ID:        c.ID,
			Video:     c.Video,
			Content:   c.Content,
			Owner:     summary(users, c.Owner),
			LikeCount: likes.counts[c.ID],
			LikedBy:   displayNames(users, likers),
			CreatedAt: c.CreatedAt,
		}
		for _, id := range likers {
			if viewer != "" && id == viewer {
				view.IsLiked = true
			}
		}
		items = append(items, view)
	}
	return newPage(items, total, page, limit), nil
}
