package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "hotel_forecast/internal/adapters/redis"
)

type payload struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
}

func newCache(t *testing.T) *redisad.Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	return redisad.New(srv.Addr(), "", 0)
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	in := payload{Version: 3, Name: "combined"}
	if err := c.Set(ctx, "k", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out payload
	hit, err := c.Get(ctx, "k", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !hit || out != in {
		t.Fatalf("hit=%v out=%+v", hit, out)
	}
}

func TestCache_MissAndDel(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	var out payload
	hit, err := c.Get(ctx, "absent", &out)
	if err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "k", payload{Version: 1}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	hit, _ = c.Get(ctx, "k", &out)
	if hit {
		t.Fatalf("key survived deletion")
	}
}

func TestCache_IncrMonotonic(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	v1, err := c.Incr(ctx, "version")
	if err != nil {
		t.Fatalf("incr: %v", err)
	}
	v2, err := c.Incr(ctx, "version")
	if err != nil {
		t.Fatalf("incr: %v", err)
	}
	if v1 != 1 || v2 != 2 {
		t.Fatalf("got %d then %d, want 1 then 2", v1, v2)
	}
}
