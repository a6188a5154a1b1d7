// Package transcode manages the lifecycle of remote transcoding jobs:
// submission, status polling, output resolution and playback URLs.
package transcode

import "strings"

// Status is the normalized lifecycle state of a remote transcode job.
type Status string

const (
	StatusSubmitted   Status = "SUBMITTED"
	StatusProgressing Status = "PROGRESSING"
	StatusComplete    Status = "COMPLETE"
	StatusError       Status = "ERROR"
	StatusCanceled    Status = "CANCELED"
)

// MapRemoteStatus normalizes a vendor status string. Unknown values map
// to SUBMITTED so a misbehaving vendor never wedges the poll loop.
func MapRemoteStatus(raw string) Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PROGRESSING":
		return StatusProgressing
	case "COMPLETE":
		return StatusComplete
	case "ERROR":
		return StatusError
	case "CANCELED":
		return StatusCanceled
	default:
		return StatusSubmitted
	}
}
