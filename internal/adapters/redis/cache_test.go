package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "github.com/DanteTheCreator/real-estate-deployment-sub001/internal/adapters/redis"
	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/domain"
)

func ptr(s string) *string { return &s }

func TestCache_SetGetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	in := domain.Content{Title: ptr("Apartment"), Description: ptr("Nice flat")}
	if err := c.Set(ctx, "translation:20246666:en", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out domain.Content
	ok, err := c.Get(ctx, "translation:20246666:en", &out)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out.Title == nil || *out.Title != "Apartment" || out.Description == nil || *out.Description != "Nice flat" {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	if err := c.Del(ctx, "translation:20246666:en"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	ok, err = c.Get(ctx, "translation:20246666:en", &out)
	if err != nil || ok {
		t.Fatalf("expected miss after delete: ok=%v err=%v", ok, err)
	}
}

func TestCache_MissingKey(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)

	var out domain.Content
	ok, err := c.Get(context.Background(), "translation:nope:ru", &out)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ok {
		t.Fatalf("expected miss")
	}
}
