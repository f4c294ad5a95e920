package docstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type testTarget struct {
	Kind string `bson:"kind"`
	ID   string `bson:"id"`
}

type testDoc struct {
	ID        string     `bson:"_id,omitempty"`
	Owner     string     `bson:"owner"`
	Title     string     `bson:"title"`
	Views     int64      `bson:"views"`
	Tags      []string   `bson:"tags"`
	Target    testTarget `bson:"target"`
	CreatedAt time.Time  `bson:"createdAt"`
}

func newTestCollection(t *testing.T, indexes ...Index) (*Memory, Collection[testDoc]) {
	t.Helper()
	m := NewMemory()
	require.NoError(t, m.EnsureIndexes("docs", indexes...))
	return m, NewMemoryCollection[testDoc](m, "docs")
}

func TestMemoryInsertAssignsID(t *testing.T) {
	ctx := context.Background()
	_, c := newTestCollection(t)

	doc := &testDoc{Owner: "a", Title: "first"}
	id, err := c.Insert(ctx, doc)
	require.NoError(t, err)
	assert.True(t, IsValidID(id))
	assert.Equal(t, id, doc.ID)

	got, err := c.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)

	_, err = c.FindByID(ctx, NewID())
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestMemoryFilters(t *testing.T) {
	ctx := context.Background()
	_, c := newTestCollection(t)

	for _, d := range []*testDoc{
		{Owner: "a", Tags: []string{"x", "y"}, Target: testTarget{Kind: "video", ID: "1"}},
		{Owner: "b", Tags: []string{"y"}, Target: testTarget{Kind: "comment", ID: "1"}},
		{Owner: "c", Target: testTarget{Kind: "video", ID: "2"}},
	} {
		_, err := c.Insert(ctx, d)
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter Filter
		want   int64
	}{
		{"eq", Eq("owner", "a"), 1},
		{"array membership", Eq("tags", "y"), 2},
		{"dotted path", Eq("target.kind", "video"), 2},
		{"compound", And(Eq("target.kind", "video"), Eq("target.id", "1")), 1},
		{"in", In("owner", []string{"a", "c", "z"}), 2},
		{"in empty", In("owner", []string{}), 0},
		{"all", Filter{}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := c.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestMemoryUniqueIndex(t *testing.T) {
	ctx := context.Background()
	_, c := newTestCollection(t, Index{Name: "owner_target", Fields: []string{"owner", "target.kind", "target.id"}, Unique: true})

	_, err := c.Insert(ctx, &testDoc{Owner: "a", Target: testTarget{Kind: "video", ID: "1"}})
	require.NoError(t, err)
	_, err = c.Insert(ctx, &testDoc{Owner: "a", Target: testTarget{Kind: "tweet", ID: "1"}})
	require.NoError(t, err)

	_, err = c.Insert(ctx, &testDoc{Owner: "a", Target: testTarget{Kind: "video", ID: "1"}})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	n, err := c.Count(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryFindManySortAndPage(t *testing.T) {
	ctx := context.Background()
	_, c := newTestCollection(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		id, err := c.Insert(ctx, &testDoc{Owner: "a", Views: int64(i % 2), CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	page, err := c.FindMany(ctx, Eq("owner", "a"), FindOptions{
		Sort:  []SortField{{Field: "createdAt", Desc: true}},
		Skip:  1,
		Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)

	// 相同排序键按 _id 升序
	byViews, err := c.FindMany(ctx, Filter{}, FindOptions{Sort: []SortField{{Field: "views"}}})
	require.NoError(t, err)
	require.Len(t, byViews, 5)
	assert.Equal(t, []string{ids[0], ids[2], ids[4], ids[1], ids[3]}, []string{
		byViews[0].ID, byViews[1].ID, byViews[2].ID, byViews[3].ID, byViews[4].ID,
	})

	empty, err := c.FindMany(ctx, Filter{}, FindOptions{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryUpdates(t *testing.T) {
	ctx := context.Background()
	_, c := newTestCollection(t)

	id, err := c.Insert(ctx, &testDoc{Owner: "a", Tags: []string{"x"}})
	require.NoError(t, err)

	ok, err := c.UpdateByID(ctx, id, Update{
		Set:      map[string]any{"title": "renamed"},
		Inc:      map[string]any{"views": int64(2)},
		AddToSet: map[string]any{"tags": "x"},
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.UpdateByID(ctx, id, Update{Push: map[string]any{"tags": "y"}})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := c.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, int64(2), got.Views)
	assert.Equal(t, []string{"x", "y"}, got.Tags)

	n, err := c.UpdateMany(ctx, Eq("tags", "x"), Update{Pull: map[string]any{"tags": "x"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, err = c.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, got.Tags)

	ok, err = c.UpdateByID(ctx, NewID(), Update{Set: map[string]any{"title": "x"}})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryMoveToEnd(t *testing.T) {
	ctx := context.Background()
	_, c := newTestCollection(t)

	id, err := c.Insert(ctx, &testDoc{Tags: []string{"a", "b", "c"}})
	require.NoError(t, err)

	ok, err := c.UpdateByID(ctx, id, Update{MoveToEnd: map[string]any{"tags": "a"}, Set: map[string]any{"title": "t"}})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.UpdateByID(ctx, id, Update{MoveToEnd: map[string]any{"tags": "d"}})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := c.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a", "d"}, got.Tags)
	assert.Equal(t, "t", got.Title)

	_, err = c.UpdateByID(ctx, id, Update{MoveToEnd: map[string]any{"tags": "a"}, Push: map[string]any{"tags": "x"}})
	assert.ErrorIs(t, err, ErrMixedUpdate)
}

func TestMemoryMoveToEndConcurrent(t *testing.T) {
	ctx := context.Background()
	_, c := newTestCollection(t)

	id, err := c.Insert(ctx, &testDoc{Tags: []string{}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.UpdateByID(ctx, id, Update{MoveToEnd: map[string]any{"tags": "v"}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := c.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, got.Tags)
}

func TestUpdateDocument(t *testing.T) {
	doc, err := Update{Set: bson.M{"a": 1}, Pull: bson.M{"b": "x"}}.Document()
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$set": bson.M{"a": 1}, "$pull": bson.M{"b": "x"}}, doc)

	doc, err = Update{MoveToEnd: bson.M{"h": "v"}}.Document()
	require.NoError(t, err)
	stages, ok := doc.(bson.A)
	require.True(t, ok)
	require.Len(t, stages, 1)
	set := stages[0].(bson.M)["$set"].(bson.M)
	assert.Contains(t, set, "h")

	_, err = Update{MoveToEnd: bson.M{"h": "v"}, Inc: bson.M{"n": 1}}.Document()
	assert.ErrorIs(t, err, ErrMixedUpdate)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	_, c := newTestCollection(t)

	id, err := c.Insert(ctx, &testDoc{Owner: "a"})
	require.NoError(t, err)
	_, err = c.Insert(ctx, &testDoc{Owner: "b"})
	require.NoError(t, err)
	_, err = c.Insert(ctx, &testDoc{Owner: "b"})
	require.NoError(t, err)

	ok, err := c.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := c.DeleteMany(ctx, Eq("owner", "b"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, err := c.Count(ctx, Filter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestMemoryHooks(t *testing.T) {
	ctx := context.Background()
	m, c := newTestCollection(t)

	boom := errors.New("boom")
	m.FailOn("docs", OpInsert, boom)
	_, err := c.Insert(ctx, &testDoc{Owner: "a"})
	assert.ErrorIs(t, err, boom)

	m.FailOn("docs", OpInsert, nil)
	_, err = c.Insert(ctx, &testDoc{Owner: "a"})
	assert.NoError(t, err)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.Count(cctx, Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID(NewID()))
	assert.False(t, IsValidID("not-an-id"))
	assert.False(t, IsValidID("65A1B2C3D4E5F60718293A4B"))
	assert.False(t, IsValidID(""))
}
