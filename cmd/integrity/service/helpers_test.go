package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"VidTube.com/cmd/dal"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/oss"
	"github.com/stretchr/testify/require"
)

type recordingJournal struct {
	mu       sync.Mutex
	begun    []string
	steps    map[string][]string
	finished map[string]error
}

func newRecordingJournal() *recordingJournal {
	return &recordingJournal{steps: make(map[string][]string), finished: make(map[string]error)}
}

func (j *recordingJournal) Begin(_ context.Context, rootKind, rootID string) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	id := rootKind + ":" + rootID + ":" + docstore.NewID()
	j.begun = append(j.begun, id)
	return id, nil
}

func (j *recordingJournal) Step(_ context.Context, runID, step string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.steps[runID] = append(j.steps[runID], step)
	return nil
}

func (j *recordingJournal) Finish(_ context.Context, runID string, cause error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finished[runID] = cause
	return nil
}

type recordingProducer struct {
	mq.NopProducer
	mu      sync.Mutex
	cascade []*mq.CascadeEvent
}

func (p *recordingProducer) PublishCascadeEvent(_ context.Context, event *mq.CascadeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cascade = append(p.cascade, event)
	return nil
}

type fixture struct {
	ctx     context.Context
	mem     *docstore.Memory
	store   *dal.Store
	blobs   *oss.MemoryStore
	journal *recordingJournal
	events  *recordingProducer
	svc     *CascadeService
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := docstore.NewMemory()
	store, err := dal.NewMemoryStore(mem)
	require.NoError(t, err)
	f := &fixture{
		ctx:     context.Background(),
		mem:     mem,
		store:   store,
		blobs:   oss.NewMemoryStore(),
		journal: newRecordingJournal(),
		events:  &recordingProducer{},
		clock:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	f.svc = NewCascadeService(store, f.blobs, f.journal, f.events)
	return f
}

func (f *fixture) now() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fixture) blob(t *testing.T, kind oss.Kind) string {
	t.Helper()
	url, err := f.blobs.Store(f.ctx, []byte("media"), kind)
	require.NoError(t, err)
	return url
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     name,
		Email:        name + "@vidtube.dev",
		FullName:     name + " full",
		Avatar:       f.blob(t, oss.KindImage),
		CoverImage:   f.blob(t, oss.KindImage),
		WatchHistory: []string{},
		CreatedAt:    f.now(),
	}
	_, err := f.store.Users.Insert(f.ctx, u)
	require.NoError(t, err)
	return u
}

func (f *fixture) video(t *testing.T, owner string) *model.Video {
	t.Helper()
	v := &model.Video{
		Owner:       owner,
		Title:       "title",
		Description: "desc",
		VideoFile:   f.blob(t, oss.KindVideo),
		Thumbnail:   f.blob(t, oss.KindImage),
		IsPublished: true,
		CreatedAt:   f.now(),
	}
	_, err := f.store.Videos.Insert(f.ctx, v)
	require.NoError(t, err)
	return v
}

func (f *fixture) comment(t *testing.T, owner, video string) *model.Comment {
	t.Helper()
	c := &model.Comment{Owner: owner, Video: video, Content: "nice", CreatedAt: f.now()}
	_, err := f.store.Comments.Insert(f.ctx, c)
	require.NoError(t, err)
	return c
}

func (f *fixture) tweet(t *testing.T, owner string) *model.Tweet {
	t.Helper()
	tw := &model.Tweet{Owner: owner, Content: "hello", CreatedAt: f.now()}
	_, err := f.store.Tweets.Insert(f.ctx, tw)
	require.NoError(t, err)
	return tw
}

func (f *fixture) like(t *testing.T, by string, kind model.TargetKind, target string) {
	t.Helper()
	_, err := f.store.Likes.Insert(f.ctx, &model.Like{LikedBy: by, Target: model.LikeTarget{Kind: kind, ID: target}, CreatedAt: f.now()})
	require.NoError(t, err)
}

func (f *fixture) subscribe(t *testing.T, subscriber, channel string) {
	t.Helper()
	_, err := f.store.Subscriptions.Insert(f.ctx, &model.Subscription{Subscriber: subscriber, Channel: channel, CreatedAt: f.now()})
	require.NoError(t, err)
}

func (f *fixture) playlist(t *testing.T, owner string, videos ...string) *model.Playlist {
	t.Helper()
	p := &model.Playlist{Owner: owner, Name: "mix", Videos: append([]string{}, videos...), CreatedAt: f.now()}
	_, err := f.store.Playlists.Insert(f.ctx, p)
	require.NoError(t, err)
	return p
}

func (f *fixture) watch(t *testing.T, userID string, videos ...string) {
	t.Helper()
	for _, v := range videos {
		_, err := f.store.Users.UpdateByID(f.ctx, userID, docstore.Update{Push: map[string]any{model.FieldWatchHistory: v}})
		require.NoError(t, err)
	}
}

func count[T any](t *testing.T, c docstore.Collection[T], filter docstore.Filter) int64 {
	t.Helper()
	n, err := c.Count(context.Background(), filter)
	require.NoError(t, err)
	return n
}

func likesOn(kind model.TargetKind, id string) docstore.Filter {
	return docstore.And(docstore.Eq(model.FieldTargetKind, string(kind)), docstore.Eq(model.FieldTargetID, id))
}
