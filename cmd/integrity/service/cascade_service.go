package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"VidTube.com/cmd/dal"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/oss"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
)

const (
	RootUser     = "user"
	RootVideo    = "video"
	RootComment  = "comment"
	RootTweet    = "tweet"
	RootPlaylist = "playlist"
)

// CascadeService 负责实体删除时清理所有依赖它的文档
// 每一步是单文档或批量的原子操作，整体不是事务：出错即停止，已完成的步骤不回滚，重试是安全的
type CascadeService struct {
	store    *dal.Store
	blobs    oss.BlobStore
	journal  Journal
	producer mq.MessageProducer
}

func NewCascadeService(store *dal.Store, blobs oss.BlobStore, journal Journal, producer mq.MessageProducer) *CascadeService {
	if journal == nil {
		journal = NopJournal{}
	}
	if producer == nil {
		producer = mq.NopProducer{}
	}
	return &CascadeService{store: store, blobs: blobs, journal: journal, producer: producer}
}

// CascadeReport 一次级联删除的结果
type CascadeReport struct {
	RunID        string           `json:"runId"`
	RootKind     string           `json:"rootKind"`
	RootID       string           `json:"rootId"`
	RootDeleted  bool             `json:"rootDeleted"`
	Deleted      map[string]int64 `json:"deleted"`
	Detached     map[string]int64 `json:"detached"`
	BlobsDeleted int              `json:"blobsDeleted"`
}

// run 一次级联执行的上下文，嵌套的视频删除共享同一个 run
type run struct {
	ctx    context.Context
	svc    *CascadeService
	report *CascadeReport
}

func (s *CascadeService) begin(ctx context.Context, kind, id string) *run {
	runID, err := s.journal.Begin(ctx, kind, id)
	if err != nil {
		hlog.CtxWarnf(ctx, "cascade journal begin %s/%s failed: %v", kind, id, err)
		runID = uuid.New().String()
	}
	return &run{
		ctx: ctx,
		svc: s,
		report: &CascadeReport{
			RunID:    runID,
			RootKind: kind,
			RootID:   id,
			Deleted:  make(map[string]int64),
			Detached: make(map[string]int64),
		},
	}
}

// step 执行一步并记录；失败时返回 UpstreamErr
func (r *run) step(name string, fn func(ctx context.Context) error) error {
	if err := fn(r.ctx); err != nil {
		hlog.CtxErrorf(r.ctx, "cascade %s %s: step %s failed: %v", r.report.RootKind, r.report.RootID, name, err)
		return errno.UpstreamErr.
			WithMessage(fmt.Sprintf("cascade %s %s aborted at step %s: %v", r.report.RootKind, r.report.RootID, name, err)).
			Wrap(err)
	}
	if err := r.svc.journal.Step(r.ctx, r.report.RunID, name); err != nil {
		hlog.CtxWarnf(r.ctx, "cascade journal step %s failed: %v", name, err)
	}
	return nil
}

func (r *run) deleted(collection string, n int64) {
	r.report.Deleted[collection] += n
}

func (r *run) finish(cause error) (*CascadeReport, error) {
	ctx := r.ctx
	if err := r.svc.journal.Finish(ctx, r.report.RunID, cause); err != nil {
		hlog.CtxWarnf(ctx, "cascade journal finish %s failed: %v", r.report.RunID, err)
	}
	event := &mq.CascadeEvent{
		EventID:   uuid.New().String(),
		RunID:     r.report.RunID,
		RootKind:  r.report.RootKind,
		RootID:    r.report.RootID,
		Status:    model.CascadeCompleted,
		Deleted:   r.report.Deleted,
		Timestamp: time.Now().Unix(),
	}
	if cause != nil {
		event.Status = model.CascadeFailed
		event.Error = cause.Error()
	}
	if err := r.svc.producer.PublishCascadeEvent(ctx, event); err != nil {
		hlog.CtxWarnf(ctx, "publish cascade event failed: %v", err)
	}
	if cause != nil {
		return r.report, cause
	}
	hlog.CtxInfof(ctx, "cascade %s %s completed: root deleted=%v, deleted=%v, detached=%v, blobs=%d",
		r.report.RootKind, r.report.RootID, r.report.RootDeleted, r.report.Deleted, r.report.Detached, r.report.BlobsDeleted)
	return r.report, nil
}

// findRoot 读取根实体，不存在时返回 nil 而不是错误
func findRoot[T any](ctx context.Context, coll docstore.Collection[T], id string) (*T, error) {
	doc, err := coll.FindByID(ctx, id)
	if errors.Is(err, docstore.ErrNoDocuments) {
		return nil, nil
	}
	return doc, err
}

func ids[T any](docs []*T, id func(*T) string) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, id(d))
	}
	return out
}

// deleteLikesOn 删除指向某类目标的所有点赞
func (r *run) deleteLikesOn(kind model.TargetKind, targetIDs ...string) error {
	if len(targetIDs) == 0 {
		return nil
	}
	return r.step("likes_on_"+string(kind), func(ctx context.Context) error {
		n, err := r.svc.store.Likes.DeleteMany(ctx, docstore.And(
			docstore.Eq(model.FieldTargetKind, string(kind)),
			docstore.In(model.FieldTargetID, targetIDs),
		))
		r.deleted("likes", n)
		return err
	})
}

func (r *run) deleteBlob(url string, kind oss.Kind) error {
	if url == "" {
		return nil
	}
	return r.step("blob_"+string(kind), func(ctx context.Context) error {
		ok, err := r.svc.blobs.Delete(ctx, url, kind)
		if ok {
			r.report.BlobsDeleted++
		}
		return err
	})
}
