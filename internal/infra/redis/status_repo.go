package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dreambees-video-pipeline/internal/domain"
	"dreambees-video-pipeline/internal/domain/model"
	"dreambees-video-pipeline/internal/domain/ports/repository"
)

const (
	statusKeyPrefix = "job_status:"
	statusTTL       = 24 * time.Hour
)

// StatusRepo keeps one JSON record per job and mirrors every write onto
// the status-updates list so subscribers see changes in order.
type StatusRepo struct {
	client RedisClient
}

var _ repository.JobStatusRepository = (*StatusRepo)(nil)

func NewStatusRepo(client RedisClient) *StatusRepo {
	return &StatusRepo{client: client}
}

func (r *StatusRepo) Get(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := r.client.Get(ctx, statusKeyPrefix+jobID)
	if errors.Is(err, domain.ErrNotFound) {
		return model.DefaultJob(jobID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job status: %w", err)
	}
	var job model.Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("decode job status: %w", err)
	}
	return &job, nil
}

func (r *StatusRepo) MarkQueued(ctx context.Context, jobID string) error {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return err
	}
	job.Status = model.JobQueued
	job.Progress = 0
	job.Message = "Waiting in queue..."
	return r.save(ctx, job)
}

func (r *StatusRepo) UpdateProgress(ctx context.Context, jobID string, progress int, message, remoteJobID string) error {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return err
	}
	job.Status = model.JobProcessing
	// Progress never goes backwards across concurrent writers.
	if progress > job.Progress {
		job.Progress = progress
	}
	job.Message = message
	if remoteJobID != "" {
		job.RemoteJobID = remoteJobID
	}
	return r.save(ctx, job)
}

func (r *StatusRepo) MarkFailed(ctx context.Context, jobID, errMsg string) error {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return err
	}
	job.Status = model.JobFailed
	job.Message = "Video generation failed"
	job.Error = errMsg
	return r.save(ctx, job)
}

func (r *StatusRepo) MarkCompleted(ctx context.Context, jobID, videoURL string) error {
	job, err := r.Get(ctx, jobID)
	if err != nil {
		return err
	}
	job.Status = model.JobCompleted
	job.Progress = 100
	job.Message = "Video generation completed successfully"
	job.Error = ""
	job.VideoURL = videoURL
	return r.save(ctx, job)
}

func (r *StatusRepo) save(ctx context.Context, job *model.Job) error {
	job.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job status: %w", err)
	}
	if err := r.client.Set(ctx, statusKeyPrefix+job.JobID, data, statusTTL); err != nil {
		return fmt.Errorf("store job status: %w", err)
	}
	if err := r.client.RPush(ctx, model.QueueStatusUpdates, data); err != nil {
		return fmt.Errorf("publish status update: %w", err)
	}
	// Unconsumed events expire with the status records they mirror.
	if err := r.client.Expire(ctx, model.QueueStatusUpdates, statusTTL); err != nil {
		return fmt.Errorf("expire status updates: %w", err)
	}
	return nil
}
