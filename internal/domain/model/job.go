package model

import (
	"strings"
	"time"
)

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is the externally observable state of one video generation request.
// It lives as a single JSON record keyed by JobID; all mutations are
// read-modify-write merges so concurrent writers (orchestrator and the
// transcode monitor) never clobber each other's fields.
type Job struct {
	JobID       string    `json:"jobId"`
	Status      JobStatus `json:"status"`
	Progress    int       `json:"progress"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	RemoteJobID string    `json:"remoteJobId,omitempty"`
	Timestamp   int64     `json:"timestamp,omitempty"`
}

// DefaultJob is what a status read returns before the first write:
// absence means "not started yet", not an error.
func DefaultJob(jobID string) *Job {
	return &Job{
		JobID:     jobID,
		Status:    JobProcessing,
		Progress:  0,
		Message:   "Initializing...",
		Timestamp: time.Now().UnixMilli(),
	}
}

func IsTerminal(j *Job) bool {
	return j != nil && (j.Status == JobCompleted || j.Status == JobFailed)
}

// CanRetry reports whether a failed job is worth re-submitting.
// The substring checks are a deliberate placeholder policy: vendor error
// wording is not a stable contract.
func CanRetry(j *Job) bool {
	if j == nil || j.Status != JobFailed {
		return false
	}
	msg := strings.ToLower(j.Error)
	for _, fatal := range []string{"quota", "invalid", "unauthorized"} {
		if strings.Contains(msg, fatal) {
			return false
		}
	}
	return true
}
