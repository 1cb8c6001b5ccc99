package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New(true)

	etag := c.Set("k", []byte("v"), time.Minute)
	data, gotETag, ok := c.Get("k")

	require.True(t, ok)
	assert.Equal(t, []byte("v"), data)
	assert.Equal(t, etag, gotETag)
}

func TestCache_Expiry(t *testing.T) {
	c := New(true)
	c.Set("k", []byte("v"), -time.Second)

	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_DisabledIsNoOp(t *testing.T) {
	c := New(false)
	etag := c.Set("k", []byte("v"), time.Minute)

	assert.NotEmpty(t, etag, "disabled cache still computes ETags")
	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_Invalidate(t *testing.T) {
	c := New(true)
	c.Set("k", []byte("v"), time.Minute)
	c.Invalidate()

	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("payload"))

	assert.True(t, CheckETagMatch(etag, etag))
	assert.True(t, CheckETagMatch("*", etag))
	assert.False(t, CheckETagMatch("", etag))
	assert.False(t, CheckETagMatch(`W/"other"`, etag))
}
