package redis

import (
	"context"
	"testing"

	"dreambees-video-pipeline/internal/transcode"
)

func TestOutputCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewOutputCache(newFakeClient())

	loc := &transcode.OutputLocation{Key: "output/job-1_output.mp4", Bucket: "videos"}
	if err := cache.Put(ctx, "remote-1", loc); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := cache.Get(ctx, "remote-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Key != loc.Key || got.Bucket != loc.Bucket {
		t.Errorf("got %+v, want %+v", got, loc)
	}
}

func TestOutputCacheForget(t *testing.T) {
	ctx := context.Background()
	cache := NewOutputCache(newFakeClient())

	loc := &transcode.OutputLocation{Key: "output/job-1_output.mp4", Bucket: "videos"}
	if err := cache.Put(ctx, "remote-1", loc); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.Forget(ctx, "remote-1"); err != nil {
		t.Fatalf("Forget: %v", err)
	}

	got, err := cache.Get(ctx, "remote-1")
	if err != nil {
		t.Fatalf("Get after Forget: %v", err)
	}
	if got != nil {
		t.Errorf("evicted entry still cached: %+v", got)
	}
}
