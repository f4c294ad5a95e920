package service

import (
	"errors"
	"testing"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteVideoWithCommentsAndLikes(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	fan := f.user(t, "fan")
	other := f.user(t, "other")

	v := f.video(t, owner.ID)
	keep := f.video(t, owner.ID)
	c1 := f.comment(t, fan.ID, v.ID)
	c2 := f.comment(t, other.ID, v.ID)
	kept := f.comment(t, fan.ID, keep.ID)

	f.like(t, fan.ID, model.TargetVideo, v.ID)
	f.like(t, other.ID, model.TargetVideo, v.ID)
	f.like(t, owner.ID, model.TargetComment, c1.ID)
	f.like(t, fan.ID, model.TargetVideo, keep.ID)
	f.like(t, fan.ID, model.TargetComment, kept.ID)

	pl := f.playlist(t, fan.ID, keep.ID, v.ID)
	f.watch(t, fan.ID, v.ID, keep.ID)

	report, err := f.svc.DeleteVideo(f.ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, report.RootDeleted)
	assert.Equal(t, int64(3), report.Deleted["likes"])
	assert.Equal(t, int64(2), report.Deleted["comments"])
	assert.Equal(t, int64(1), report.Deleted["videos"])
	assert.Equal(t, int64(1), report.Detached["playlists"])
	assert.Equal(t, int64(1), report.Detached["watchHistory"])
	assert.Equal(t, 2, report.BlobsDeleted)

	assert.Zero(t, count(t, f.store.Videos, docstore.ByID(v.ID)))
	assert.Zero(t, count(t, f.store.Comments, docstore.Eq(model.FieldVideo, v.ID)))
	assert.Zero(t, count(t, f.store.Likes, likesOn(model.TargetVideo, v.ID)))
	assert.Zero(t, count(t, f.store.Likes, likesOn(model.TargetComment, c1.ID)))
	assert.Zero(t, count(t, f.store.Likes, likesOn(model.TargetComment, c2.ID)))
	assert.False(t, f.blobs.Has(v.VideoFile))
	assert.False(t, f.blobs.Has(v.Thumbnail))

	// 无关数据保持不变
	assert.Equal(t, int64(1), count(t, f.store.Comments, docstore.ByID(kept.ID)))
	assert.Equal(t, int64(2), count(t, f.store.Likes, docstore.Filter{}))
	assert.True(t, f.blobs.Has(keep.VideoFile))

	gotPl, err := f.store.Playlists.FindByID(f.ctx, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, gotPl.Videos)
	gotFan, err := f.store.Users.FindByID(f.ctx, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, gotFan.WatchHistory)

	require.Len(t, f.events.cascade, 1)
	assert.Equal(t, model.CascadeCompleted, f.events.cascade[0].Status)
	assert.Nil(t, f.journal.finished[report.RunID])
	assert.Equal(t, "video", f.journal.steps[report.RunID][len(f.journal.steps[report.RunID])-1])
}

func TestDeleteVideoIsIdempotent(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	v := f.video(t, owner.ID)
	f.comment(t, owner.ID, v.ID)

	_, err := f.svc.DeleteVideo(f.ctx, v.ID)
	require.NoError(t, err)

	report, err := f.svc.DeleteVideo(f.ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, report.RootDeleted)
	assert.Zero(t, report.Deleted["comments"])
	assert.Zero(t, report.Deleted["likes"])
	assert.Zero(t, report.BlobsDeleted)
}

func TestDeleteVideoSweepsStrayDependents(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u")
	missing := docstore.NewID()
	c := f.comment(t, u.ID, missing)
	f.like(t, u.ID, model.TargetVideo, missing)
	f.like(t, u.ID, model.TargetComment, c.ID)
	f.watch(t, u.ID, missing)

	report, err := f.svc.DeleteVideo(f.ctx, missing)
	require.NoError(t, err)
	assert.False(t, report.RootDeleted)
	assert.Equal(t, int64(2), report.Deleted["likes"])
	assert.Equal(t, int64(1), report.Deleted["comments"])
	assert.Zero(t, count(t, f.store.Likes, docstore.Filter{}))

	got, err := f.store.Users.FindByID(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.WatchHistory)
}

func TestDeleteUserRemovesEverythingReferencingUser(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice")
	b := f.user(t, "bob")

	aTweet := f.tweet(t, a.ID)
	aVideo := f.video(t, a.ID)
	bVideo := f.video(t, b.ID)
	aPlaylist := f.playlist(t, a.ID, bVideo.ID)
	bPlaylist := f.playlist(t, b.ID, aVideo.ID, bVideo.ID)
	aCommentOnB := f.comment(t, a.ID, bVideo.ID)
	bCommentOnA := f.comment(t, b.ID, aVideo.ID)
	bCommentOnB := f.comment(t, b.ID, bVideo.ID)

	f.like(t, b.ID, model.TargetTweet, aTweet.ID)
	f.like(t, b.ID, model.TargetVideo, aVideo.ID)
	f.like(t, b.ID, model.TargetComment, aCommentOnB.ID)
	f.like(t, b.ID, model.TargetComment, bCommentOnA.ID)
	f.like(t, a.ID, model.TargetVideo, bVideo.ID)
	f.like(t, a.ID, model.TargetComment, bCommentOnB.ID)
	f.like(t, b.ID, model.TargetVideo, bVideo.ID)
	f.subscribe(t, a.ID, b.ID)
	f.subscribe(t, b.ID, a.ID)
	f.watch(t, b.ID, aVideo.ID, bVideo.ID)

	report, err := f.svc.DeleteUser(f.ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, report.RootDeleted)

	assert.Zero(t, count(t, f.store.Users, docstore.ByID(a.ID)))
	assert.Zero(t, count(t, f.store.Tweets, docstore.Eq(model.FieldOwner, a.ID)))
	assert.Zero(t, count(t, f.store.Videos, docstore.Eq(model.FieldOwner, a.ID)))
	assert.Zero(t, count(t, f.store.Playlists, docstore.ByID(aPlaylist.ID)))
	assert.Zero(t, count(t, f.store.Comments, docstore.Eq(model.FieldOwner, a.ID)))
	assert.Zero(t, count(t, f.store.Comments, docstore.ByID(bCommentOnA.ID)))
	assert.Zero(t, count(t, f.store.Likes, docstore.Eq(model.FieldLikedBy, a.ID)))
	assert.Zero(t, count(t, f.store.Subscriptions, docstore.Eq(model.FieldSubscriber, a.ID)))
	assert.Zero(t, count(t, f.store.Subscriptions, docstore.Eq(model.FieldChannel, a.ID)))
	assert.False(t, f.blobs.Has(a.Avatar))
	assert.False(t, f.blobs.Has(a.CoverImage))
	assert.False(t, f.blobs.Has(aVideo.VideoFile))

	// bob 自己的数据只剩与 alice 无关的部分
	assert.Equal(t, int64(1), count(t, f.store.Likes, docstore.Filter{}))
	assert.Equal(t, int64(1), count(t, f.store.Likes, likesOn(model.TargetVideo, bVideo.ID)))
	assert.Equal(t, int64(1), count(t, f.store.Comments, docstore.Filter{}))
	assert.True(t, f.blobs.Has(b.Avatar))

	gotPl, err := f.store.Playlists.FindByID(f.ctx, bPlaylist.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bVideo.ID}, gotPl.Videos)
	gotB, err := f.store.Users.FindByID(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bVideo.ID}, gotB.WatchHistory)

	again, err := f.svc.DeleteUser(f.ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, again.RootDeleted)
}

func TestCascadeAbortsOnStoreFailure(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	v := f.video(t, owner.ID)
	c := f.comment(t, owner.ID, v.ID)
	f.like(t, owner.ID, model.TargetVideo, v.ID)

	boom := errors.New("connection reset")
	f.mem.FailOn("comments", docstore.OpDelete, boom)

	report, err := f.svc.DeleteVideo(f.ctx, v.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errno.UpstreamErr))
	assert.True(t, errors.Is(err, boom))
	assert.False(t, report.RootDeleted)

	// 已完成的步骤不回滚，后续步骤未执行
	assert.Zero(t, count(t, f.store.Likes, likesOn(model.TargetVideo, v.ID)))
	assert.Equal(t, int64(1), count(t, f.store.Comments, docstore.ByID(c.ID)))
	assert.Equal(t, int64(1), count(t, f.store.Videos, docstore.ByID(v.ID)))
	assert.True(t, f.blobs.Has(v.VideoFile))
	assert.Error(t, f.journal.finished[report.RunID])
	require.Len(t, f.events.cascade, 1)
	assert.Equal(t, model.CascadeFailed, f.events.cascade[0].Status)

	// 重试可以完成剩余步骤
	f.mem.FailOn("comments", docstore.OpDelete, nil)
	report, err = f.svc.Rerun(f.ctx, RootVideo, v.ID)
	require.NoError(t, err)
	assert.True(t, report.RootDeleted)
	assert.Zero(t, count(t, f.store.Comments, docstore.Filter{}))
}

func TestCascadeAbortsOnBlobFailure(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	v := f.video(t, owner.ID)

	f.blobs.FailOn("delete", errors.New("minio unavailable"))
	_, err := f.svc.DeleteVideo(f.ctx, v.ID)
	assert.True(t, errors.Is(err, errno.UpstreamErr))
	assert.Equal(t, int64(1), count(t, f.store.Videos, docstore.ByID(v.ID)))
}

func TestDeleteCommentTweetPlaylist(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u")
	v := f.video(t, u.ID)
	c := f.comment(t, u.ID, v.ID)
	tw := f.tweet(t, u.ID)
	pl := f.playlist(t, u.ID, v.ID)
	f.like(t, u.ID, model.TargetComment, c.ID)
	f.like(t, u.ID, model.TargetTweet, tw.ID)
	f.like(t, u.ID, model.TargetVideo, v.ID)

	report, err := f.svc.DeleteComment(f.ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, report.RootDeleted)
	assert.Equal(t, int64(1), report.Deleted["likes"])

	report, err = f.svc.DeleteTweet(f.ctx, tw.ID)
	require.NoError(t, err)
	assert.True(t, report.RootDeleted)
	assert.Zero(t, count(t, f.store.Likes, likesOn(model.TargetTweet, tw.ID)))

	report, err = f.svc.DeletePlaylist(f.ctx, pl.ID)
	require.NoError(t, err)
	assert.True(t, report.RootDeleted)

	// 播放列表不拥有视频
	assert.Equal(t, int64(1), count(t, f.store.Videos, docstore.ByID(v.ID)))
	assert.Equal(t, int64(1), count(t, f.store.Likes, docstore.Filter{}))
}

func TestCascadeRejectsInvalidIDs(t *testing.T) {
	f := newFixture(t)
	for _, fn := range []func() (*CascadeReport, error){
		func() (*CascadeReport, error) { return f.svc.DeleteUser(f.ctx, "nope") },
		func() (*CascadeReport, error) { return f.svc.DeleteVideo(f.ctx, "123") },
		func() (*CascadeReport, error) { return f.svc.DeleteComment(f.ctx, "") },
		func() (*CascadeReport, error) { return f.svc.DeleteTweet(f.ctx, "zz") },
		func() (*CascadeReport, error) { return f.svc.DeletePlaylist(f.ctx, "x") },
	} {
		_, err := fn()
		assert.True(t, errors.Is(err, errno.InvalidReferenceErr))
	}
	assert.Empty(t, f.journal.begun)

	_, err := f.svc.Rerun(f.ctx, "channel", docstore.NewID())
	assert.True(t, errors.Is(err, errno.InvalidOperationErr))
}
