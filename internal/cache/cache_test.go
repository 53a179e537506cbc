package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourusername/kubmonitor/internal/model"
	"go.uber.org/zap"
)

func testSnapshot(jobs ...string) *model.ClusterSnapshot {
	snap := &model.ClusterSnapshot{Namespace: "ml"}
	for _, name := range jobs {
		snap.Jobs = append(snap.Jobs, model.JobRecord{
			Name: name,
			Pods: []model.PodRecord{{Name: name + "-abcde"}},
		})
	}
	return snap
}

func TestTTLCache(t *testing.T) {
	logger := zap.NewNop()
	cache := NewTTLCache(1*time.Second, logger)
	ctx := context.Background()

	// Test initial cache miss
	_, ok := cache.Get(ctx)
	if ok {
		t.Error("Expected cache miss on empty cache")
	}

	// Test cache set
	err := cache.Set(ctx, testSnapshot("job1"))
	if err != nil {
		t.Errorf("Failed to set cache: %v", err)
	}

	// Test cache hit
	cached, ok := cache.Get(ctx)
	if !ok {
		t.Fatal("Expected cache hit")
	}
	if len(cached.Jobs) != 1 || cached.Jobs[0].Name != "job1" {
		t.Error("Cached data mismatch")
	}

	// Test cache expiration
	time.Sleep(1100 * time.Millisecond)
	_, ok = cache.Get(ctx)
	if ok {
		t.Error("Expected cache miss after expiration")
	}
}

func TestTTLCacheLatest(t *testing.T) {
	cache := NewTTLCache(10*time.Second, zap.NewNop())
	ctx := context.Background()

	if _, err := cache.Latest(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Expected ErrNoSnapshot, got %v", err)
	}

	cache.Set(ctx, testSnapshot("a"))
	cache.Set(ctx, testSnapshot("b", "c"))

	snap, err := cache.Latest(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(snap.Jobs) != 2 || snap.Jobs[0].Name != "b" {
		t.Errorf("Expected the newest snapshot, got %+v", snap.Jobs)
	}
}

func TestTTLCacheRejectsNil(t *testing.T) {
	cache := NewTTLCache(10*time.Second, zap.NewNop())
	ctx := context.Background()
	cache.Set(ctx, testSnapshot("keep"))

	if err := cache.Set(ctx, nil); err == nil {
		t.Error("Expected an error for a nil snapshot")
	}
	snap, ok := cache.Get(ctx)
	if !ok || snap.Jobs[0].Name != "keep" {
		t.Error("Expected previous snapshot to survive")
	}
}
