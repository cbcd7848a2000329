package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listSnapshot struct {
	Items []string `json:"items"`
	Total int64    `json:"total"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, nil), mr
}

func TestKeys(t *testing.T) {
	k := NewKeys("")

	assert.Equal(t, "campaigns_api:campaigns:u1:2:10:active:spring+sale", k.List("campaigns", "u1", 2, 10, "active", "spring sale"))
	assert.Equal(t, "campaigns_api:campaigns:u1:", k.OwnerPrefix("campaigns", "u1"))
	assert.Equal(t, "campaigns_api:campaigns_item:c1", k.Item("campaigns", "c1"))

	// user supplied ':' cannot forge another key's structure
	assert.NotEqual(t,
		k.List("campaigns", "u1", 1, 10, "a:b", ""),
		k.List("campaigns", "u1", 1, 10, "a", "b"),
	)
}

func TestRedisCache_SetGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", listSnapshot{Items: []string{"a"}, Total: 1}, DefaultListTTL)

	var got listSnapshot
	require.True(t, c.Get(ctx, "k", &got))
	assert.Equal(t, int64(1), got.Total)
	assert.Equal(t, DefaultListTTL, mr.TTL("k"))

	mr.FastForward(DefaultListTTL + time.Second)
	assert.False(t, c.Get(ctx, "k", &got))
}

func TestRedisCache_DeletePrefix(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	k := NewKeys("test")

	for page := 1; page <= 450; page++ {
		c.Set(ctx, k.List("campaigns", "u1", page, 10, "", ""), listSnapshot{}, time.Minute)
	}
	c.Set(ctx, k.List("campaigns", "u2", 1, 10, "", ""), listSnapshot{}, time.Minute)
	c.Set(ctx, k.List("campaigns", "u10", 1, 10, "", ""), listSnapshot{}, time.Minute)

	c.DeletePrefix(ctx, k.OwnerPrefix("campaigns", "u1"))

	var got listSnapshot
	assert.False(t, c.Get(ctx, k.List("campaigns", "u1", 1, 10, "", ""), &got))
	assert.False(t, c.Get(ctx, k.List("campaigns", "u1", 450, 10, "", ""), &got))
	assert.True(t, c.Get(ctx, k.List("campaigns", "u2", 1, 10, "", ""), &got))
	assert.True(t, c.Get(ctx, k.List("campaigns", "u10", 1, 10, "", ""), &got))
}

func TestRedisCache_DegradesWhenStoreIsDown(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	mr.Close()

	assert.NotPanics(t, func() {
		c.Set(ctx, "k", listSnapshot{}, time.Minute)
		c.Delete(ctx, "k")
		c.DeletePrefix(ctx, "campaigns_api:campaigns:u1:")
	})

	var got listSnapshot
	assert.False(t, c.Get(ctx, "k", &got))
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	c.Set(context.Background(), "k", 1, time.Minute)

	var got int
	assert.False(t, c.Get(context.Background(), "k", &got))
}
