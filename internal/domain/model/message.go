package model

// Queue names shared by producers and consumers.
const (
	QueueVideoGeneration = "video-generation"
	QueueStatusUpdates   = "status-updates"
)

// MessageTypeGenerateVideo is the only payload type the video worker accepts.
const MessageTypeGenerateVideo = "generate_video"

// VideoGenerationPayload carries the request data for one job.
type VideoGenerationPayload struct {
	Type      string `json:"type"`
	ImageData string `json:"imageData"` // base64, optionally a data: URL
}

// QueueMessage is the opaque envelope carried on the work queue.
type QueueMessage struct {
	JobID     string                 `json:"jobId"`
	UserID    string                 `json:"userId,omitempty"`
	Data      VideoGenerationPayload `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}
