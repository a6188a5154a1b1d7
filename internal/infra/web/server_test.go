package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"dreambees-video-pipeline/internal/domain"
	"dreambees-video-pipeline/internal/domain/model"
	"dreambees-video-pipeline/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type fakeStatus struct {
	mu     sync.Mutex
	jobs   map[string]*model.Job
	queued []string
	getErr error
}

var _ repository.JobStatusRepository = (*fakeStatus)(nil)

func newFakeStatus() *fakeStatus {
	return &fakeStatus{jobs: make(map[string]*model.Job)}
}

func (f *fakeStatus) Get(ctx context.Context, jobID string) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if j, ok := f.jobs[jobID]; ok {
		return j, nil
	}
	return model.DefaultJob(jobID), nil
}

func (f *fakeStatus) MarkQueued(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, jobID)
	f.jobs[jobID] = &model.Job{JobID: jobID, Status: model.JobQueued, Message: "Waiting in queue..."}
	return nil
}

func (f *fakeStatus) UpdateProgress(ctx context.Context, jobID string, progress int, message, remoteJobID string) error {
	return nil
}

func (f *fakeStatus) MarkFailed(ctx context.Context, jobID, errMsg string) error { return nil }

func (f *fakeStatus) MarkCompleted(ctx context.Context, jobID, videoURL string) error { return nil }

type fakeQueue struct {
	mu       sync.Mutex
	payloads map[string][][]byte
}

var _ repository.WorkQueue = (*fakeQueue)(nil)

func newFakeQueue() *fakeQueue {
	return &fakeQueue{payloads: make(map[string][][]byte)}
}

func (f *fakeQueue) Enqueue(ctx context.Context, queue string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads[queue] = append(f.payloads[queue], payload)
	return nil
}

func (f *fakeQueue) Dequeue(ctx context.Context, queue string) ([]byte, error) {
	return nil, domain.ErrQueueEmpty
}

func (f *fakeQueue) Requeue(ctx context.Context, queue string, payload []byte) error {
	return f.Enqueue(ctx, queue, payload)
}

func newTestServer(status *fakeStatus, queue *fakeQueue, apiKey string) *httptest.Server {
	s := NewServer(status, queue, "cdn.example.com", apiKey, nopLogger())
	return httptest.NewServer(s.Router())
}

func TestCreateVideoQueuesJob(t *testing.T) {
	status := newFakeStatus()
	queue := newFakeQueue()
	srv := newTestServer(status, queue, "")
	defer srv.Close()

	body := `{"imageData":"aGVsbG8=","userId":"user-7"}`
	resp, err := http.Post(srv.URL+"/api/videos", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	var out createVideoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.Success || out.JobID == "" {
		t.Fatalf("response = %+v", out)
	}

	status.mu.Lock()
	if len(status.queued) != 1 || status.queued[0] != out.JobID {
		t.Errorf("queued jobs = %v", status.queued)
	}
	status.mu.Unlock()

	queue.mu.Lock()
	defer queue.mu.Unlock()
	msgs := queue.payloads[model.QueueVideoGeneration]
	if len(msgs) != 1 {
		t.Fatalf("queue length = %d, want 1", len(msgs))
	}
	var msg model.QueueMessage
	if err := json.Unmarshal(msgs[0], &msg); err != nil {
		t.Fatal(err)
	}
	if msg.JobID != out.JobID || msg.UserID != "user-7" {
		t.Errorf("message = %+v", msg)
	}
	if msg.Data.Type != model.MessageTypeGenerateVideo || msg.Data.ImageData != "aGVsbG8=" {
		t.Errorf("payload = %+v", msg.Data)
	}
}

func TestCreateVideoRequiresImageData(t *testing.T) {
	srv := newTestServer(newFakeStatus(), newFakeQueue(), "")
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/videos", "application/json", strings.NewReader(`{"userId":"u"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestVideoStatusReturnsRecord(t *testing.T) {
	status := newFakeStatus()
	status.jobs["job-1"] = &model.Job{
		JobID:    "job-1",
		Status:   model.JobCompleted,
		Progress: 100,
		Message:  "Video generation completed successfully",
		VideoURL: "https://cdn.example.com/output/job-1_output.mp4",
	}
	srv := newTestServer(status, newFakeQueue(), "")
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/video-status/job-1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out videoStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Status != model.JobCompleted || out.Progress != 100 {
		t.Errorf("response = %+v", out)
	}
	if out.VideoURL != "https://cdn.example.com/output/job-1_output.mp4" {
		t.Errorf("video url = %q", out.VideoURL)
	}
}

func TestVideoStatusFiltersInvalidURL(t *testing.T) {
	status := newFakeStatus()
	status.jobs["job-1"] = &model.Job{
		JobID:    "job-1",
		Status:   model.JobCompleted,
		Progress: 100,
		VideoURL: "https://cdn.example.com/output/undefined.mp4",
	}
	srv := newTestServer(status, newFakeQueue(), "")
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/video-status/job-1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out videoStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.VideoURL != "" {
		t.Errorf("invalid url leaked to client: %q", out.VideoURL)
	}
}

func TestVideoStatusUnknownJob(t *testing.T) {
	srv := newTestServer(newFakeStatus(), newFakeQueue(), "")
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/video-status/missing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out videoStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	// Unknown jobs read as the default in-flight record.
	if out.Status != model.JobProcessing || out.Message != "Initializing..." {
		t.Errorf("response = %+v", out)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	srv := newTestServer(newFakeStatus(), newFakeQueue(), "secret")
	defer srv.Close()

	get := func(auth string) int {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/video-status/job-1", nil)
		if err != nil {
			t.Fatal(err)
		}
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := get(""); code != http.StatusUnauthorized {
		t.Errorf("no header: %d, want 401", code)
	}
	if code := get("Bearer wrong"); code != http.StatusForbidden {
		t.Errorf("wrong key: %d, want 403", code)
	}
	if code := get("garbage"); code != http.StatusUnauthorized {
		t.Errorf("malformed: %d, want 401", code)
	}
	if code := get("Bearer secret"); code != http.StatusOK {
		t.Errorf("correct key: %d, want 200", code)
	}

	// Health stays open regardless of the key.
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health: %d, want 200", resp.StatusCode)
	}
}
