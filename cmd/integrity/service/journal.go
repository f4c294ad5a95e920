package service

import (
	"context"

	"github.com/google/uuid"
)

// Journal 记录级联执行过程，写入失败只记日志，不影响级联本身
type Journal interface {
	Begin(ctx context.Context, rootKind, rootID string) (string, error)
	Step(ctx context.Context, runID, step string) error
	Finish(ctx context.Context, runID string, cause error) error
}

type NopJournal struct{}

func (NopJournal) Begin(context.Context, string, string) (string, error) {
	return uuid.New().String(), nil
}

func (NopJournal) Step(context.Context, string, string) error { return nil }

func (NopJournal) Finish(context.Context, string, error) error { return nil }
