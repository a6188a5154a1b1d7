package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"dreambees-video-pipeline/internal/domain"
	"dreambees-video-pipeline/internal/domain/model"
)

// fakeClient is an in-memory RedisClient for tests.
type fakeClient struct {
	mu    sync.Mutex
	kv    map[string]string
	lists map[string][]string

	expired map[string]int
	setErr  error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		kv:      make(map[string]string),
		lists:   make(map[string][]string),
		expired: make(map[string]int),
	}
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.kv[key] = asString(value)
	return nil
}

func (f *fakeClient) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.kv[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.kv, k)
	}
	return nil
}

func (f *fakeClient) RPush(ctx context.Context, key string, values ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range values {
		f.lists[key] = append(f.lists[key], asString(v))
	}
	return nil
}

func (f *fakeClient) LPop(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lists[key]
	if len(l) == 0 {
		return "", domain.ErrNotFound
	}
	f.lists[key] = l[1:]
	return l[0], nil
}

func (f *fakeClient) Expire(ctx context.Context, key string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired[key]++
	return nil
}

func (f *fakeClient) Close() error { return nil }

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func (f *fakeClient) listLen(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lists[key])
}

func TestStatusRepoGetDefault(t *testing.T) {
	repo := NewStatusRepo(newFakeClient())
	job, err := repo.Get(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != model.JobProcessing || job.Progress != 0 || job.Message != "Initializing..." {
		t.Errorf("default record = %+v", job)
	}
}

func TestStatusRepoProgressMonotonic(t *testing.T) {
	ctx := context.Background()
	repo := NewStatusRepo(newFakeClient())

	var got []int
	for _, p := range []int{10, 5, 30, 20} {
		if err := repo.UpdateProgress(ctx, "job-1", p, "working", ""); err != nil {
			t.Fatalf("UpdateProgress(%d): %v", p, err)
		}
		job, err := repo.Get(ctx, "job-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		got = append(got, job.Progress)
	}
	want := []int{10, 10, 30, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("progress sequence = %v, want %v", got, want)
		}
	}
}

func TestStatusRepoPreservesRemoteJobID(t *testing.T) {
	ctx := context.Background()
	repo := NewStatusRepo(newFakeClient())

	if err := repo.UpdateProgress(ctx, "job-1", 80, "Creating video...", "mc-123"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateProgress(ctx, "job-1", 90, "Processing video...", ""); err != nil {
		t.Fatal(err)
	}
	job, err := repo.Get(ctx, "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if job.RemoteJobID != "mc-123" {
		t.Errorf("remote job id = %q, want mc-123", job.RemoteJobID)
	}
	if job.Message != "Processing video..." {
		t.Errorf("message = %q", job.Message)
	}
}

func TestStatusRepoMarkFailedPreservesProgress(t *testing.T) {
	ctx := context.Background()
	repo := NewStatusRepo(newFakeClient())

	if err := repo.UpdateProgress(ctx, "job-1", 60, "Generating subtitles...", ""); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkFailed(ctx, "job-1", "speech synthesis failed"); err != nil {
		t.Fatal(err)
	}
	job, err := repo.Get(ctx, "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != model.JobFailed {
		t.Errorf("status = %q", job.Status)
	}
	if job.Progress != 60 {
		t.Errorf("progress = %d, want 60", job.Progress)
	}
	if job.Error != "speech synthesis failed" {
		t.Errorf("error = %q", job.Error)
	}
}

func TestStatusRepoMarkCompleted(t *testing.T) {
	ctx := context.Background()
	repo := NewStatusRepo(newFakeClient())

	if err := repo.MarkFailed(ctx, "job-1", "transient"); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkCompleted(ctx, "job-1", "https://cdn.example.com/output/job-1.mp4"); err != nil {
		t.Fatal(err)
	}
	job, err := repo.Get(ctx, "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != model.JobCompleted || job.Progress != 100 {
		t.Errorf("job = %+v", job)
	}
	if job.Error != "" {
		t.Errorf("error not cleared: %q", job.Error)
	}
	if job.VideoURL != "https://cdn.example.com/output/job-1.mp4" {
		t.Errorf("video url = %q", job.VideoURL)
	}
}

func TestStatusRepoFansOutEveryWrite(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	repo := NewStatusRepo(client)

	if err := repo.MarkQueued(ctx, "job-1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateProgress(ctx, "job-1", 20, "Analyzing image...", ""); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkCompleted(ctx, "job-1", "https://cdn.example.com/output/job-1.mp4"); err != nil {
		t.Fatal(err)
	}

	if n := client.listLen(model.QueueStatusUpdates); n != 3 {
		t.Fatalf("status-updates fanout length = %d, want 3", n)
	}
	// Each write refreshes the retention window on the fanout list.
	client.mu.Lock()
	expired := client.expired[model.QueueStatusUpdates]
	client.mu.Unlock()
	if expired != 3 {
		t.Errorf("fanout list expire calls = %d, want 3", expired)
	}

	// Each fanout entry is the full job record.
	raw, err := client.LPop(ctx, model.QueueStatusUpdates)
	if err != nil {
		t.Fatal(err)
	}
	var job model.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		t.Fatalf("fanout payload not a job record: %v", err)
	}
	if job.JobID != "job-1" || job.Status != model.JobQueued {
		t.Errorf("first fanout = %+v", job)
	}
}
