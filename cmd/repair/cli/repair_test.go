package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"VidTube.com/cmd/dal"
	"VidTube.com/cmd/integrity/dal/db"
	integrity "VidTube.com/cmd/integrity/service"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/oss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	ctx      context.Context
	mem      *docstore.Memory
	store    *dal.Store
	journal  *db.Journal
	cascades *integrity.CascadeService
	out      *bytes.Buffer
	repairer *Repairer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	mem := docstore.NewMemory()
	store, err := dal.NewMemoryStore(mem)
	require.NoError(t, err)
	journal := db.NewJournal(gdb)
	cascades := integrity.NewCascadeService(store, oss.NewMemoryStore(), journal, nil)
	out := &bytes.Buffer{}
	return &fixture{
		ctx:      context.Background(),
		mem:      mem,
		store:    store,
		journal:  journal,
		cascades: cascades,
		out:      out,
		repairer: NewRepairer(journal, cascades, out, 2),
	}
}

// failedVideoDelete 造一条删除评论时失败的视频级联
func (f *fixture) failedVideoDelete(t *testing.T) *model.Video {
	t.Helper()
	v := &model.Video{Owner: docstore.NewID(), Title: "v", CreatedAt: time.Now()}
	_, err := f.store.Videos.Insert(f.ctx, v)
	require.NoError(t, err)
	_, err = f.store.Comments.Insert(f.ctx, &model.Comment{Owner: docstore.NewID(), Video: v.ID, Content: "c"})
	require.NoError(t, err)

	f.mem.FailOn("comments", docstore.OpDelete, errors.New("primary stepped down"))
	_, err = f.cascades.DeleteVideo(f.ctx, v.ID)
	require.Error(t, err)
	f.mem.FailOn("comments", docstore.OpDelete, nil)
	return v
}

func TestListAndRetryFailedRuns(t *testing.T) {
	f := newFixture(t)
	v := f.failedVideoDelete(t)

	require.NoError(t, f.repairer.List(f.ctx, 10))
	assert.Contains(t, f.out.String(), "video/"+v.ID)
	assert.Contains(t, f.out.String(), "primary stepped down")

	fixed, failed, err := f.repairer.RetryAll(f.ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)
	assert.Zero(t, failed)

	_, err = f.store.Videos.FindByID(f.ctx, v.ID)
	assert.True(t, errors.Is(err, docstore.ErrNoDocuments))
	n, err := f.store.Comments.Count(f.ctx, docstore.Eq(model.FieldVideo, v.ID))
	require.NoError(t, err)
	assert.Zero(t, n)

	runs, err := f.journal.ListFailed(f.ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRetryKeepsOneFailedRunWhenStillBroken(t *testing.T) {
	f := newFixture(t)
	v := f.failedVideoDelete(t)
	f.mem.FailOn("comments", docstore.OpDelete, errors.New("still down"))

	for i := 1; i <= 4; i++ {
		fixed, failed, err := f.repairer.RetryAll(f.ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, fixed)
		assert.Equal(t, 1, failed)

		runs, err := f.journal.ListFailed(f.ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, v.ID, runs[0].RootID)
		assert.Equal(t, i, runs[0].RetryCount)
	}

	f.mem.FailOn("comments", docstore.OpDelete, nil)
	fixed, failed, err := f.repairer.RetryAll(f.ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)
	assert.Zero(t, failed)
	runs, err := f.journal.ListFailed(f.ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestWatchHandlerKeepsOneFailedRun(t *testing.T) {
	f := newFixture(t)
	v := f.failedVideoDelete(t)
	f.mem.FailOn("comments", docstore.OpDelete, errors.New("still down"))

	for i := 0; i < 2; i++ {
		runs, err := f.journal.ListFailed(f.ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		require.NoError(t, f.repairer.HandleCascadeEvent(f.ctx, &mq.CascadeEvent{
			RunID: runs[0].ID, RootKind: integrity.RootVideo, RootID: v.ID, Status: model.CascadeFailed,
		}))
	}
	runs, err := f.journal.ListFailed(f.ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].RetryCount)
}

func TestWatchHandlerRetriesFailedEvents(t *testing.T) {
	f := newFixture(t)
	v := f.failedVideoDelete(t)
	runs, err := f.journal.ListFailed(f.ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	require.NoError(t, f.repairer.HandleCascadeEvent(f.ctx, &mq.CascadeEvent{
		RunID: runs[0].ID, RootKind: integrity.RootVideo, RootID: v.ID, Status: model.CascadeFailed,
	}))
	_, err = f.store.Videos.FindByID(f.ctx, v.ID)
	assert.True(t, errors.Is(err, docstore.ErrNoDocuments))
	run, err := f.journal.Get(f.ctx, runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.CascadeCompleted, run.Status)
}

type countingRerunner struct{ calls int }

func (c *countingRerunner) Rerun(context.Context, string, string) (*integrity.CascadeReport, error) {
	c.calls++
	return nil, errors.New("boom")
}

type nopRuns struct{}

func (nopRuns) ListFailed(context.Context, int) ([]*model.CascadeRun, error) { return nil, nil }
func (nopRuns) MarkRetried(context.Context, string, error) error             { return nil }

func TestWatchHandlerGivesUpAfterMaxAttempts(t *testing.T) {
	rerunner := &countingRerunner{}
	r := NewRepairer(nopRuns{}, rerunner, io.Discard, 2)
	event := &mq.CascadeEvent{RootKind: integrity.RootTweet, RootID: docstore.NewID(), Status: model.CascadeFailed}
	for i := 0; i < 4; i++ {
		require.NoError(t, r.HandleCascadeEvent(context.Background(), event))
	}
	assert.Equal(t, 2, rerunner.calls)

	require.NoError(t, r.HandleCascadeEvent(context.Background(), &mq.CascadeEvent{
		RootKind: event.RootKind, RootID: event.RootID, Status: model.CascadeCompleted,
	}))
	require.NoError(t, r.HandleCascadeEvent(context.Background(), event))
	assert.Equal(t, 3, rerunner.calls)
}

func TestRetryCommandUsesLoader(t *testing.T) {
	f := newFixture(t)
	f.failedVideoDelete(t)

	cmd := NewRootCommand(func(ctx context.Context, out io.Writer, opts *RootOptions) (*Deps, error) {
		assert.Equal(t, 5, opts.Limit)
		return &Deps{Repairer: NewRepairer(f.journal, f.cascades, out, 1), Close: func() {}}, nil
	})
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"retry", "--limit", "5"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "fixed 1, still failing 0")
}
