package web

import (
	"encoding/json"
	"net/http"
	"time"

	"dreambees-video-pipeline/internal/domain/model"
	"dreambees-video-pipeline/internal/transcode"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type createVideoRequest struct {
	ImageData string `json:"imageData"`
	UserID    string `json:"userId"`
}

type createVideoResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
}

type videoStatusResponse struct {
	Status   model.JobStatus `json:"status"`
	Progress int             `json:"progress"`
	Message  string          `json:"message"`
	Error    string          `json:"error,omitempty"`
	VideoURL string          `json:"videoUrl,omitempty"`
}

// handleCreateVideo accepts an image and queues a generation job. The
// job is acknowledged before any processing happens, so the response is
// always 202 with a job ID to poll.
func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ImageData == "" {
		http.Error(w, "imageData is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	jobID := uuid.NewString()

	if err := s.status.MarkQueued(ctx, jobID); err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("mark queued")
		http.Error(w, "Failed to queue job", http.StatusInternalServerError)
		return
	}

	msg := model.QueueMessage{
		JobID:  jobID,
		UserID: req.UserID,
		Data: model.VideoGenerationPayload{
			Type:      model.MessageTypeGenerateVideo,
			ImageData: req.ImageData,
		},
		Timestamp: time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		http.Error(w, "Failed to queue job", http.StatusInternalServerError)
		return
	}
	if err := s.queue.Enqueue(ctx, model.QueueVideoGeneration, payload); err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("enqueue job")
		http.Error(w, "Failed to queue job", http.StatusInternalServerError)
		return
	}

	s.log.Info().Str("job_id", jobID).Str("user_id", req.UserID).Msg("video job queued")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(createVideoResponse{Success: true, JobID: jobID})
}

// handleVideoStatus returns the current job record. The stored video URL
// is revalidated on every read so a corrupt record never reaches a
// client.
func (s *Server) handleVideoStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		http.Error(w, "job id is required", http.StatusBadRequest)
		return
	}

	job, err := s.status.Get(r.Context(), jobID)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("read job status")
		http.Error(w, "Failed to read job status", http.StatusInternalServerError)
		return
	}

	resp := videoStatusResponse{
		Status:   job.Status,
		Progress: job.Progress,
		Message:  job.Message,
		Error:    job.Error,
	}
	if job.VideoURL != "" {
		if transcode.ValidateVideoURL(job.VideoURL, s.cdnDomain) {
			resp.VideoURL = job.VideoURL
		} else {
			s.log.Warn().Str("job_id", jobID).Str("video_url", job.VideoURL).
				Msg("dropping invalid stored video url")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
