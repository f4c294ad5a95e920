package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	integrity "VidTube.com/cmd/integrity/service"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/mq"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Runs 级联执行记录的读写
type Runs interface {
	ListFailed(ctx context.Context, limit int) ([]*model.CascadeRun, error)
	MarkRetried(ctx context.Context, runID string, cause error) error
}

// Rerunner 按根重新执行级联
type Rerunner interface {
	Rerun(ctx context.Context, rootKind, rootID string) (*integrity.CascadeReport, error)
}

// Repairer 重试失败的级联；级联本身幂等，重复执行是安全的
type Repairer struct {
	runs        Runs
	cascades    Rerunner
	out         io.Writer
	maxAttempts int

	mu       sync.Mutex
	attempts map[string]int
}

func NewRepairer(runs Runs, cascades Rerunner, out io.Writer, maxAttempts int) *Repairer {
	return &Repairer{runs: runs, cascades: cascades, out: out, maxAttempts: maxAttempts, attempts: make(map[string]int)}
}

// List 打印失败的记录
func (r *Repairer) List(ctx context.Context, limit int) error {
	runs, err := r.runs.ListFailed(ctx, limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tROOT\tLAST STEP\tRETRIES\tCREATED\tERROR")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s/%s\t%s\t%d\t%s\t%s\n",
			run.ID, run.RootKind, run.RootID, run.LastStep, run.RetryCount,
			run.CreatedAt.Format(constants.DataFormate), run.ErrorMessage)
	}
	return w.Flush()
}

// RetryAll 逐条重试，返回修复成功与仍然失败的数量
func (r *Repairer) RetryAll(ctx context.Context, limit int) (fixed, failed int, err error) {
	runs, err := r.runs.ListFailed(ctx, limit)
	if err != nil {
		return 0, 0, err
	}
	for _, run := range runs {
		_, cause := r.cascades.Rerun(ctx, run.RootKind, run.RootID)
		if err := r.runs.MarkRetried(ctx, run.ID, cause); err != nil {
			hlog.CtxWarnf(ctx, "mark run %s retried failed: %v", run.ID, err)
		}
		if cause != nil {
			failed++
			fmt.Fprintf(r.out, "retry %s %s/%s failed: %v\n", run.ID, run.RootKind, run.RootID, cause)
			continue
		}
		fixed++
		fmt.Fprintf(r.out, "retry %s %s/%s ok\n", run.ID, run.RootKind, run.RootID)
	}
	return fixed, failed, nil
}

// HandleCascadeEvent 收到失败事件时立即重试，同一个根最多重试 maxAttempts 次
func (r *Repairer) HandleCascadeEvent(ctx context.Context, event *mq.CascadeEvent) error {
	if event.Status != model.CascadeFailed {
		r.forget(event.RootKind, event.RootID)
		return nil
	}
	key := event.RootKind + "/" + event.RootID
	r.mu.Lock()
	r.attempts[key]++
	n := r.attempts[key]
	r.mu.Unlock()
	if n > r.maxAttempts {
		hlog.CtxWarnf(ctx, "cascade %s still failing after %d attempts, leaving it for manual repair", key, r.maxAttempts)
		return nil
	}

	_, cause := r.cascades.Rerun(ctx, event.RootKind, event.RootID)
	if event.RunID != "" {
		if err := r.runs.MarkRetried(ctx, event.RunID, cause); err != nil {
			hlog.CtxWarnf(ctx, "mark run %s retried failed: %v", event.RunID, err)
		}
	}
	if cause != nil {
		// 重试产生的新失败事件会再次进入这里
		hlog.CtxWarnf(ctx, "retry cascade %s attempt %d failed: %v", key, n, cause)
		return nil
	}
	r.forget(event.RootKind, event.RootID)
	return nil
}

func (r *Repairer) forget(kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, kind+"/"+id)
}
