package utils

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCacheInvalidator_PurgesOnlyEventNamespaces(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ctx := context.Background()
	rdb.Set(ctx, "cache:events:list:aaa", "x", 0)
	rdb.Set(ctx, "cache:events:list:bbb", "x", 0)
	rdb.Set(ctx, "cache:events:item:ccc", "x", 0)
	rdb.Set(ctx, "quota:user:1:day", "3", 0)

	inv := NewCacheInvalidator(rdb)
	inv.PurgeEventsList(ctx)

	if mr.Exists("cache:events:list:aaa") || mr.Exists("cache:events:list:bbb") {
		t.Fatal("list keys must be purged")
	}
	if !mr.Exists("cache:events:item:ccc") {
		t.Fatal("item keys must survive a list purge")
	}

	inv.PurgeEventItem(ctx, "some-id")
	if mr.Exists("cache:events:item:ccc") {
		t.Fatal("item keys must be purged")
	}
	if !mr.Exists("quota:user:1:day") {
		t.Fatal("unrelated keys must never be touched")
	}
}
