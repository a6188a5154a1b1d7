package repository

import (
	"context"

	"dreambees-video-pipeline/internal/domain/model"
)

// JobStatusRepository is the single source of truth for Job records.
// Implementations must merge onto the existing record rather than blind
// overwrite: updates to one job may race between the orchestrator and
// the transcode monitor, and progress must never regress.
type JobStatusRepository interface {
	// Get never returns nil: a missing record means "not started yet"
	// and yields the default processing/0 record.
	Get(ctx context.Context, jobID string) (*model.Job, error)

	// MarkQueued writes the initial record for a freshly enqueued job.
	MarkQueued(ctx context.Context, jobID string) error

	// UpdateProgress merges progress/message onto the record. The stored
	// progress is max(incoming, existing); status is forced to processing.
	// remoteJobID is recorded when non-empty and preserved otherwise.
	UpdateProgress(ctx context.Context, jobID string, progress int, message, remoteJobID string) error

	// MarkFailed sets the terminal failed state, preserving last progress.
	MarkFailed(ctx context.Context, jobID, errMsg string) error

	// MarkCompleted sets the terminal completed state with the resolved
	// output URL, progress 100, and clears any earlier error.
	MarkCompleted(ctx context.Context, jobID, videoURL string) error
}
