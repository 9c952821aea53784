package kv_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mohamadtout/therapy-platform-sub003/pkg/kv"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err := store.Get(ctx, "k")
	if err != nil || value != "v" {
		t.Fatalf("Get = (%q, %v), want (v, nil)", value, err)
	}

	store.Delete(ctx, "k")
	if _, err := store.Get(ctx, "k"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "k", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, err := store.Get(ctx, "k"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected expired key to be gone, got %v", err)
	}
}

func TestMemoryStoreIncr(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := store.Incr(ctx, "counter", time.Minute)
		if err != nil {
			t.Fatalf("Incr: %v", err)
		}
		if count != want {
			t.Fatalf("Incr = %d, want %d", count, want)
		}
	}
}

func TestMemoryStoreIncrResetsAfterWindow(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()

	store.Incr(ctx, "counter", 10*time.Millisecond)
	store.Incr(ctx, "counter", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	count, err := store.Incr(ctx, "counter", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Incr: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected counter to restart at 1 after window, got %d", count)
	}
}
