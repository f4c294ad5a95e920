package db

import (
	"context"
	"time"

	"VidTube.com/cmd/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Journal 基于 MySQL 的级联执行记录
type Journal struct {
	db *gorm.DB
}

func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) Begin(ctx context.Context, rootKind, rootID string) (string, error) {
	run := &model.CascadeRun{
		ID:        uuid.New().String(),
		RootKind:  rootKind,
		RootID:    rootID,
		Status:    model.CascadeRunning,
		CreatedAt: time.Now(),
	}
	if err := j.db.WithContext(ctx).Create(run).Error; err != nil {
		return "", errors.Wrapf(err, "create cascade run for %s/%s", rootKind, rootID)
	}
	return run.ID, nil
}

func (j *Journal) Step(ctx context.Context, runID, step string) error {
	err := j.db.WithContext(ctx).Model(&model.CascadeRun{}).Where("id = ?", runID).
		Updates(map[string]interface{}{
			"last_step": step,
			"steps":     gorm.Expr("steps + ?", 1),
		}).Error
	return errors.WithMessage(err, "record cascade step")
}

func (j *Journal) Finish(ctx context.Context, runID string, cause error) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":        model.CascadeCompleted,
		"error_message": "",
		"finished_at":   &now,
	}
	if cause != nil {
		updates["status"] = model.CascadeFailed
		updates["error_message"] = cause.Error()
	}
	err := j.db.WithContext(ctx).Model(&model.CascadeRun{}).Where("id = ?", runID).Updates(updates).Error
	return errors.WithMessage(err, "finish cascade run")
}

// ListFailed 按创建时间升序列出失败的记录
func (j *Journal) ListFailed(ctx context.Context, limit int) ([]*model.CascadeRun, error) {
	var runs []*model.CascadeRun
	q := j.db.WithContext(ctx).Where("status = ?", model.CascadeFailed).Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, errors.Wrap(err, "list failed cascade runs")
	}
	return runs, nil
}

func (j *Journal) Get(ctx context.Context, runID string) (*model.CascadeRun, error) {
	var run model.CascadeRun
	if err := j.db.WithContext(ctx).Where("id = ?", runID).First(&run).Error; err != nil {
		return nil, errors.Wrapf(err, "get cascade run %s", runID)
	}
	return &run, nil
}

// MarkRetried 重试结束后更新原记录。成功则原记录完成；
// 失败时重试已另起一条失败记录，原记录转为 superseded，重试次数累加到新记录上，
// 同一个根始终只有一条 failed 记录
func (j *Journal) MarkRetried(ctx context.Context, runID string, cause error) error {
	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orig model.CascadeRun
		if err := tx.Where("id = ?", runID).First(&orig).Error; err != nil {
			return err
		}
		now := time.Now()
		if cause == nil {
			return tx.Model(&orig).Updates(map[string]interface{}{
				"status":      model.CascadeCompleted,
				"retry_count": orig.RetryCount + 1,
				"finished_at": &now,
			}).Error
		}

		var next model.CascadeRun
		err := tx.Where("root_kind = ? AND root_id = ? AND status = ? AND id <> ?",
			orig.RootKind, orig.RootID, model.CascadeFailed, orig.ID).
			Order("created_at desc").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 重试没有写入新记录，原记录继续保持 failed
			return tx.Model(&orig).Updates(map[string]interface{}{
				"retry_count":   orig.RetryCount + 1,
				"error_message": cause.Error(),
			}).Error
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&orig).Updates(map[string]interface{}{
			"status":      model.CascadeSuperseded,
			"finished_at": &now,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&next).Update("retry_count", orig.RetryCount+1).Error
	})
	return errors.WithMessage(err, "mark cascade run retried")
}
