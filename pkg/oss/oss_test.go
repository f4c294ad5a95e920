package oss

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	url, err := s.Store(ctx, pngHeader, KindImage)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "memory://blob/picture/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	assert.True(t, s.Has(url))

	// 类型不匹配不删除
	ok, err := s.Delete(ctx, url, KindVideo)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, url, KindImage)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, url, KindImage)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreEmptyAndForeignURL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.Delete(ctx, "", KindImage)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, "http://elsewhere/picture/a.png", KindImage)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreFailure(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	boom := errors.New("boom")

	s.FailOn("store", boom)
	_, err := s.Store(ctx, []byte("x"), KindVideo)
	assert.ErrorIs(t, err, boom)
	s.FailOn("store", nil)

	url, err := s.Store(ctx, []byte("x"), KindVideo)
	require.NoError(t, err)
	s.FailOn("delete", boom)
	_, err = s.Delete(ctx, url, KindVideo)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.Len())
}

func TestSplitURL(t *testing.T) {
	bucket, object, ok := splitURL("http://localhost:9000/", "http://localhost:9000/video/abc.mp4")
	require.True(t, ok)
	assert.Equal(t, "video", bucket)
	assert.Equal(t, "abc.mp4", object)

	_, _, ok = splitURL("http://localhost:9000", "http://other:9000/video/abc.mp4")
	assert.False(t, ok)
	_, _, ok = splitURL("http://localhost:9000", "http://localhost:9000/video")
	assert.False(t, ok)
}
