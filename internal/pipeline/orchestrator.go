// Package pipeline runs one video generation job end to end: image
// decode, script, narration, captions, then handoff to the transcode
// manager.
package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dreambees-video-pipeline/internal/domain/model"
	"dreambees-video-pipeline/internal/domain/ports/adapter"
	"dreambees-video-pipeline/internal/domain/ports/repository"
	"dreambees-video-pipeline/internal/infra/logging"
	"dreambees-video-pipeline/internal/infra/metrics"
	"dreambees-video-pipeline/internal/subtitle"
	"dreambees-video-pipeline/internal/transcode"

	"github.com/rs/zerolog"
)

// audioBitrateBps is the narration MP3 bitrate; duration is estimated
// from the byte count against it.
const audioBitrateBps = 128000

// TranscodeStarter hands a finished pipeline run to the remote encoder.
type TranscodeStarter interface {
	CreateJob(ctx context.Context, jobID string, in transcode.JobInputs) (string, error)
}

// StageError tags a failure with the pipeline stage it happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

type Orchestrator struct {
	status      repository.JobStatusRepository
	storage     adapter.ObjectStorage
	scripts     adapter.ScriptGenerator
	speech      adapter.SpeechSynthesizer
	transcriber adapter.Transcriber
	transcode   TranscodeStarter
	log         *zerolog.Logger
}

func NewOrchestrator(
	status repository.JobStatusRepository,
	storage adapter.ObjectStorage,
	scripts adapter.ScriptGenerator,
	speech adapter.SpeechSynthesizer,
	transcriber adapter.Transcriber,
	tc TranscodeStarter,
	log *zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		status:      status,
		storage:     storage,
		scripts:     scripts,
		speech:      speech,
		transcriber: transcriber,
		transcode:   tc,
		log:         log,
	}
}

// Handle adapts a queue message to a pipeline run.
func (o *Orchestrator) Handle(ctx context.Context, msg *model.QueueMessage) error {
	return o.Run(ctx, msg.JobID, msg.Data.ImageData)
}

// Run executes every stage for one job. On any failure the job is marked
// FAILED, intermediate artifacts are deleted and a StageError is
// returned. Run never writes the COMPLETED record; that belongs to the
// transcode monitor.
func (o *Orchestrator) Run(ctx context.Context, jobID, imageData string) error {
	ctx = logging.WithJobID(ctx, jobID)
	log := *logging.With(ctx, o.log)
	defer logging.TraceDuration(&log, "Orchestrator.Run")()

	var artifacts []string
	fail := func(stage string, err error) error {
		log.Error().Err(err).Str("stage", stage).Msg("pipeline stage failed")
		if serr := o.status.MarkFailed(ctx, jobID, err.Error()); serr != nil {
			log.Error().Err(serr).Msg("mark failed")
		}
		o.cleanup(ctx, artifacts, &log)
		metrics.IncJob("failed")
		return &StageError{Stage: stage, Err: err}
	}

	// Stage: image
	start := time.Now()
	imageKey, err := o.prepareImage(ctx, jobID, imageData)
	metrics.ObserveStage("decode_image", time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		return fail("decode_image", err)
	}
	artifacts = append(artifacts, imageKey)

	// Stage: script
	if err := o.status.UpdateProgress(ctx, jobID, 20, "Analyzing image...", ""); err != nil {
		return fail("generate_script", err)
	}
	start = time.Now()
	script, err := o.scripts.GenerateScript(ctx, imageKey)
	metrics.ObserveStage("generate_script", time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		return fail("generate_script", err)
	}

	// Stage: narration
	if err := o.status.UpdateProgress(ctx, jobID, 40, "Generating audio...", ""); err != nil {
		return fail("synthesize_speech", err)
	}
	start = time.Now()
	audio, audioKey, err := o.synthesize(ctx, jobID, script)
	metrics.ObserveStage("synthesize_speech", time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		return fail("synthesize_speech", err)
	}
	artifacts = append(artifacts, audioKey)

	// Stage: captions
	if err := o.status.UpdateProgress(ctx, jobID, 60, "Generating subtitles...", ""); err != nil {
		return fail("generate_subtitles", err)
	}
	start = time.Now()
	subtitlesKey, err := o.buildSubtitles(ctx, jobID, script, audio, &log)
	metrics.ObserveStage("generate_subtitles", time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		return fail("generate_subtitles", err)
	}
	artifacts = append(artifacts, subtitlesKey)

	// Stage: encode handoff
	if err := o.status.UpdateProgress(ctx, jobID, 80, "Creating video...", ""); err != nil {
		return fail("create_video", err)
	}
	start = time.Now()
	remoteID, err := o.transcode.CreateJob(ctx, jobID, transcode.JobInputs{
		ImageKey:     imageKey,
		AudioKey:     audioKey,
		SubtitlesKey: subtitlesKey,
		OutputKey:    fmt.Sprintf("output/%s.mp4", jobID),
	})
	metrics.ObserveStage("create_video", time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		return fail("create_video", err)
	}

	if err := o.status.UpdateProgress(ctx, jobID, 90, "Processing video...", remoteID); err != nil {
		return fail("create_video", err)
	}

	log.Info().Str("remote_job_id", remoteID).Msg("pipeline handed off to transcoder")
	return nil
}

func (o *Orchestrator) prepareImage(ctx context.Context, jobID, imageData string) (string, error) {
	if err := o.status.UpdateProgress(ctx, jobID, 0, "Processing image...", ""); err != nil {
		return "", err
	}

	raw := imageData
	// Browsers send data URLs; keep only the base64 body.
	if strings.HasPrefix(raw, "data:") {
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:]
		}
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("decode image data: %w", err)
	}
	if len(b) == 0 {
		return "", errors.New("empty image data")
	}

	contentType := http.DetectContentType(b)
	ext := ".png"
	switch contentType {
	case "image/png":
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	default:
		if !strings.HasPrefix(contentType, "image/") {
			return "", fmt.Errorf("unsupported image type %s", contentType)
		}
	}

	key := "images/" + jobID + ext
	if err := o.storage.Upload(ctx, key, b, contentType); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return key, nil
}

func (o *Orchestrator) synthesize(ctx context.Context, jobID string, script *adapter.ScriptResult) ([]byte, string, error) {
	text := strings.Join(script.Segments, " ")
	if strings.TrimSpace(text) == "" {
		text = script.Script
	}
	if strings.TrimSpace(text) == "" {
		return nil, "", errors.New("empty narration script")
	}

	audio, err := o.speech.Synthesize(ctx, text)
	if err != nil {
		return nil, "", fmt.Errorf("synthesize speech: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", errors.New("empty narration audio")
	}

	key := "audio/" + jobID + ".mp3"
	if err := o.storage.Upload(ctx, key, audio, "audio/mpeg"); err != nil {
		return nil, "", fmt.Errorf("upload audio: %w", err)
	}
	return audio, key, nil
}

func (o *Orchestrator) buildSubtitles(ctx context.Context, jobID string, script *adapter.ScriptResult, audio []byte, log *zerolog.Logger) (string, error) {
	tr, err := o.transcriber.Transcribe(ctx, jobID+".mp3", audio)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	text := tr.Text
	if strings.TrimSpace(text) == "" {
		text = script.Script
	}

	audioDurationMs := int64(len(audio)) * 8 * 1000 / audioBitrateBps
	timings := make([]subtitle.WordTiming, 0, len(tr.Words))
	for _, w := range tr.Words {
		timings = append(timings, subtitle.WordTiming{
			Word:  w.Word,
			Start: int64(w.Start * 1000),
			End:   int64(w.End * 1000),
		})
	}

	opts := subtitle.Options{
		MinDuration:        400,
		MaxDuration:        3000,
		CharReadingSpeed:   80,
		PauseBetweenBlocks: 200,
		SentencePause:      500,
		AudioDuration:      audioDurationMs,
	}
	track, err := subtitle.Improve(text, opts, timings)
	if err != nil {
		return "", fmt.Errorf("build subtitle track: %w", err)
	}

	if analysis, aerr := subtitle.AnalyzeTrack(track, audioDurationMs); aerr == nil && analysis.SyncScore < 50 {
		log.Warn().Int("sync_score", analysis.SyncScore).Strs("suggestions", analysis.Suggestions).
			Msg("subtitle sync below threshold, retrying with conservative timing")
		if retry, rerr := subtitle.Improve(text, subtitle.ConservativeRetry(opts), timings); rerr == nil {
			track = retry
		}
	}

	key := "subtitles/" + jobID + ".srt"
	if err := o.storage.Upload(ctx, key, []byte(track), "application/x-subrip"); err != nil {
		return "", fmt.Errorf("upload subtitles: %w", err)
	}
	return key, nil
}

func (o *Orchestrator) cleanup(ctx context.Context, keys []string, log *zerolog.Logger) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := o.storage.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("artifact cleanup failed")
		}
	}
}
