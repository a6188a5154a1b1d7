package ai

import (
	"context"
	"strings"
	"time"

	"dreambees-video-pipeline/internal/domain/ports/adapter"
)

var (
	_ adapter.ScriptGenerator   = (*NoopAIAdapter)(nil)
	_ adapter.SpeechSynthesizer = (*NoopAIAdapter)(nil)
	_ adapter.Transcriber       = (*NoopAIAdapter)(nil)
)

const noopScript = "A quiet scene unfolds before us. Light settles over every surface. Something in it asks you to stop and look twice."

// NoopAIAdapter implements the media ports for local/dev runs without
// calling a real AI service. Output is canned but structurally valid.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter { return &NoopAIAdapter{} }

func (a *NoopAIAdapter) GenerateScript(ctx context.Context, imageKey string) (*adapter.ScriptResult, error) {
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &adapter.ScriptResult{Script: noopScript, Segments: splitSegments(noopScript)}, nil
}

func (a *NoopAIAdapter) Synthesize(ctx context.Context, text string) ([]byte, error) {
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	// 16 KB of zero bytes stands in for one second of MP3 audio.
	return make([]byte, 16*1024), nil
}

// Transcribe fabricates evenly spaced word timings across one second so
// downstream caption timing has something real to chew on.
func (a *NoopAIAdapter) Transcribe(ctx context.Context, filename string, audio []byte) (*adapter.TranscriptionResult, error) {
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	words := strings.Fields(noopScript)
	durationSec := float64(len(audio)) * 8 / 128000
	if durationSec <= 0 {
		durationSec = 1
	}
	step := durationSec / float64(len(words))
	out := make([]adapter.TranscribedWord, 0, len(words))
	for i, w := range words {
		out = append(out, adapter.TranscribedWord{
			Word:  w,
			Start: float64(i) * step,
			End:   float64(i+1) * step,
		})
	}
	return &adapter.TranscriptionResult{Text: noopScript, Words: out}, nil
}
