package db

import (
	"context"
	"errors"
	"testing"

	"VidTube.com/cmd/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewJournal(db)
}

func TestJournalLifecycle(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)

	done, err := j.Begin(ctx, "video", "65a1b2c3d4e5f60718293a4b")
	require.NoError(t, err)
	require.NoError(t, j.Step(ctx, done, "likes_on_video"))
	require.NoError(t, j.Step(ctx, done, "video"))
	require.NoError(t, j.Finish(ctx, done, nil))

	bad, err := j.Begin(ctx, "user", "65a1b2c3d4e5f60718293a4c")
	require.NoError(t, err)
	require.NoError(t, j.Step(ctx, bad, "load_user"))
	require.NoError(t, j.Finish(ctx, bad, errors.New("store timeout")))

	run, err := j.Get(ctx, done)
	require.NoError(t, err)
	assert.Equal(t, model.CascadeCompleted, run.Status)
	assert.Equal(t, 2, run.Steps)
	assert.Equal(t, "video", run.LastStep)
	assert.NotNil(t, run.FinishedAt)

	failed, err := j.ListFailed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, bad, failed[0].ID)
	assert.Equal(t, "store timeout", failed[0].ErrorMessage)
	assert.Equal(t, "load_user", failed[0].LastStep)
}

func TestJournalMarkRetried(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)

	id, err := j.Begin(ctx, "tweet", "65a1b2c3d4e5f60718293a4d")
	require.NoError(t, err)
	require.NoError(t, j.Finish(ctx, id, errors.New("boom")))

	require.NoError(t, j.MarkRetried(ctx, id, errors.New("still broken")))
	run, err := j.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.CascadeFailed, run.Status)
	assert.Equal(t, 1, run.RetryCount)
	assert.Equal(t, "still broken", run.ErrorMessage)

	require.NoError(t, j.MarkRetried(ctx, id, nil))
	run, err = j.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.CascadeCompleted, run.Status)
	assert.Equal(t, 2, run.RetryCount)

	failed, err := j.ListFailed(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestJournalMarkRetriedSupersedesOriginal(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)
	root := "65a1b2c3d4e5f60718293a4e"

	first, err := j.Begin(ctx, "video", root)
	require.NoError(t, err)
	require.NoError(t, j.Finish(ctx, first, errors.New("boom")))

	for i := 1; i <= 3; i++ {
		failed, err := j.ListFailed(ctx, 0)
		require.NoError(t, err)
		require.Len(t, failed, 1)

		// 重试本身写入一条新的失败记录
		retry, err := j.Begin(ctx, "video", root)
		require.NoError(t, err)
		require.NoError(t, j.Finish(ctx, retry, errors.New("still broken")))
		require.NoError(t, j.MarkRetried(ctx, failed[0].ID, errors.New("still broken")))

		old, err := j.Get(ctx, failed[0].ID)
		require.NoError(t, err)
		assert.Equal(t, model.CascadeSuperseded, old.Status)

		failed, err = j.ListFailed(ctx, 0)
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, retry, failed[0].ID)
		assert.Equal(t, i, failed[0].RetryCount)
	}
}
