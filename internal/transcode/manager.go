package transcode

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"dreambees-video-pipeline/internal/domain/ports/adapter"
	"dreambees-video-pipeline/internal/domain/ports/repository"
	"dreambees-video-pipeline/internal/infra/logging"
	"dreambees-video-pipeline/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Manager owns the remote half of a job: it submits the encode and polls
// the vendor until the job lands in a terminal state, mirroring every
// observation into the status repository.
type Manager struct {
	transcoder adapter.Transcoder
	status     repository.JobStatusRepository
	urls       *URLHandler
	role       string

	pollInterval    time.Duration
	maxPollDuration time.Duration

	log *zerolog.Logger
	wg  sync.WaitGroup
}

func NewManager(tc adapter.Transcoder, status repository.JobStatusRepository, urls *URLHandler, role string, pollInterval, maxPollDuration time.Duration, log *zerolog.Logger) *Manager {
	return &Manager{
		transcoder:      tc,
		status:          status,
		urls:            urls,
		role:            role,
		pollInterval:    pollInterval,
		maxPollDuration: maxPollDuration,
		log:             log,
	}
}

// CreateJob submits the encode and starts a background monitor. The
// returned ID is the vendor's job ID. The passed context must outlive
// the monitor; cancel it to stop polling on shutdown.
func (m *Manager) CreateJob(ctx context.Context, jobID string, in JobInputs) (string, error) {
	recipe := BuildRecipe(m.role, jobID, in)
	remoteID, err := m.transcoder.Submit(ctx, recipe)
	if err != nil {
		if serr := m.status.MarkFailed(ctx, jobID, "Failed to start video processing"); serr != nil {
			m.log.Error().Err(serr).Str("job_id", jobID).Msg("mark failed after submit error")
		}
		return "", fmt.Errorf("submit transcode job: %w", err)
	}

	if err := m.status.UpdateProgress(ctx, jobID, 0, "Video processing started", remoteID); err != nil {
		m.log.Warn().Err(err).Str("job_id", jobID).Msg("record submit progress")
	}

	m.wg.Add(1)
	go m.monitor(ctx, jobID, remoteID)
	return remoteID, nil
}

// Wait blocks until all background monitors have returned.
func (m *Manager) Wait() { m.wg.Wait() }

func (m *Manager) monitor(ctx context.Context, jobID, remoteID string) {
	defer m.wg.Done()

	ctx = logging.WithJobID(ctx, jobID)
	ctx = logging.WithRemoteJobID(ctx, remoteID)
	log := *logging.With(ctx, m.log)
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	deadline := time.Now().Add(m.maxPollDuration)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("transcode monitor stopped")
			return
		case <-ticker.C:
		}

		if time.Now().After(deadline) {
			log.Error().Dur("max_poll_duration", m.maxPollDuration).Msg("transcode deadline exceeded")
			m.fail(ctx, jobID, "transcode deadline exceeded", &log)
			return
		}

		job, err := m.transcoder.GetJob(ctx, remoteID)
		if err != nil {
			metrics.IncTranscodePoll("poll_error")
			log.Warn().Err(err).Msg("poll transcode job")
			continue
		}

		status := MapRemoteStatus(job.Status)
		metrics.IncTranscodePoll(strings.ToLower(string(status)))

		switch status {
		case StatusComplete:
			videoURL, err := m.urls.AccessibleURL(ctx, remoteID)
			if err != nil {
				log.Error().Err(err).Msg("resolve finished output")
				m.fail(ctx, jobID, "Failed to get video output", &log)
				return
			}
			if err := m.status.MarkCompleted(ctx, jobID, videoURL); err != nil {
				// The record must not stay PROCESSING forever; a failed
				// completion write downgrades the job to FAILED.
				log.Error().Err(err).Msg("mark completed")
				m.fail(ctx, jobID, "Failed to record video completion", &log)
				return
			}
			metrics.IncJob("completed")
			log.Info().Str("video_url", videoURL).Msg("video job completed")
			return

		case StatusError:
			msg := job.ErrorMessage
			if msg == "" {
				msg = "Unknown error occurred"
			}
			m.fail(ctx, jobID, msg, &log)
			return

		case StatusCanceled:
			m.fail(ctx, jobID, "Job was canceled", &log)
			return

		case StatusProgressing:
			if err := m.status.UpdateProgress(ctx, jobID, mapPercent(job.Percent), "Processing video...", remoteID); err != nil {
				log.Warn().Err(err).Msg("record transcode progress")
			}

		default:
			if err := m.status.UpdateProgress(ctx, jobID, mapPercent(nil), "Initializing video processing...", remoteID); err != nil {
				log.Warn().Err(err).Msg("record transcode progress")
			}
		}
	}
}

func (m *Manager) fail(ctx context.Context, jobID, msg string, log *zerolog.Logger) {
	if err := m.status.MarkFailed(ctx, jobID, msg); err != nil {
		log.Error().Err(err).Msg("mark failed")
	}
	metrics.IncJob("failed")
}

// mapPercent folds the vendor's 0-100 encode percentage into the tail of
// the overall job progress. Submission already put the job at 90, and
// 100 is reserved for the completed record.
func mapPercent(percent *int) int {
	if percent == nil {
		return 90
	}
	p := 90 + *percent/10
	if p > 99 {
		p = 99
	}
	return p
}
