package transcoder

import (
	"context"
	"path"
	"strings"
	"sync"

	"dreambees-video-pipeline/internal/domain"
	"dreambees-video-pipeline/internal/domain/ports/adapter"

	"github.com/google/uuid"
)

var _ adapter.Transcoder = (*NoopTranscoder)(nil)

type noopJob struct {
	recipe *adapter.EncodeRecipe
	polls  int
}

// NoopTranscoder simulates the managed transcoding service for dev runs.
// Each poll advances the job one state; on completion the output object
// is written into storage where the resolver expects it.
type NoopTranscoder struct {
	mu      sync.Mutex
	jobs    map[string]*noopJob
	storage adapter.ObjectStorage
}

func NewNoopTranscoder(storage adapter.ObjectStorage) *NoopTranscoder {
	return &NoopTranscoder{jobs: make(map[string]*noopJob), storage: storage}
}

func (t *NoopTranscoder) Submit(ctx context.Context, recipe *adapter.EncodeRecipe) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := uuid.NewString()
	t.jobs[id] = &noopJob{recipe: recipe}
	return id, nil
}

func (t *NoopTranscoder) GetJob(ctx context.Context, remoteJobID string) (*adapter.RemoteJob, error) {
	t.mu.Lock()
	job, ok := t.jobs[remoteJobID]
	if !ok {
		t.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	job.polls++
	polls := job.polls
	recipe := job.recipe
	t.mu.Unlock()

	remote := &adapter.RemoteJob{
		ID:                remoteJobID,
		OutputDestination: recipe.Destination,
		NameModifier:      recipe.NameModifier,
		Extension:         recipe.Extension,
	}

	switch {
	case polls == 1:
		remote.Status = "SUBMITTED"
	case polls == 2:
		percent := 50
		remote.Status = "PROGRESSING"
		remote.Percent = &percent
	default:
		remote.Status = "COMPLETE"
		if err := t.writeOutput(ctx, recipe); err != nil {
			return nil, err
		}
	}
	return remote, nil
}

func (t *NoopTranscoder) writeOutput(ctx context.Context, recipe *adapter.EncodeRecipe) error {
	dest := strings.TrimPrefix(recipe.Destination, "/")
	dir := path.Dir(dest)
	if dir == "." {
		dir = ""
	}
	name := path.Base(dest)
	base := strings.TrimSuffix(name, path.Ext(name))
	key := path.Join(dir, base+recipe.NameModifier+recipe.Extension)

	if ok, err := t.storage.Exists(ctx, key); err == nil && ok {
		return nil
	}
	return t.storage.Upload(ctx, key, []byte("noop encoded video"), "video/mp4")
}
