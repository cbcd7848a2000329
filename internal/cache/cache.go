package cache

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultListTTL is how long a cached list page stays valid.
const DefaultListTTL = 300 * time.Second

// Cache is advisory: implementations swallow and log store failures, so a
// Get failure is a miss and a failed write is a no-op.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	DeletePrefix(ctx context.Context, prefix string)
}

// Keys builds deterministic cache keys under a global prefix.
type Keys struct {
	prefix string
}

func NewKeys(prefix string) Keys {
	if prefix == "" {
		prefix = "campaigns_api"
	}
	return Keys{prefix: prefix}
}

// List is the key of one list page. Filter values are query-escaped so that
// ':' and glob characters from user input cannot collide with other keys.
func (k Keys) List(kind, owner string, page, size int, filters ...string) string {
	parts := []string{k.prefix, kind, owner, strconv.Itoa(page), strconv.Itoa(size)}
	for _, f := range filters {
		parts = append(parts, url.QueryEscape(f))
	}
	return strings.Join(parts, ":")
}

// OwnerPrefix matches every list page of kind cached for owner.
func (k Keys) OwnerPrefix(kind, owner string) string {
	return strings.Join([]string{k.prefix, kind, owner}, ":") + ":"
}

// Item is the single entity key.
func (k Keys) Item(kind, id string) string {
	return strings.Join([]string{k.prefix, kind + "_item", id}, ":")
}

// Noop is used when no cache store is configured.
type Noop struct{}

func (Noop) Get(context.Context, string, any) bool { return false }
func (Noop) Set(context.Context, string, any, time.Duration) {}
func (Noop) Delete(context.Context, ...string) {}
func (Noop) DeletePrefix(context.Context, string) {}
