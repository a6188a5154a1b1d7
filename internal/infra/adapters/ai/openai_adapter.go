package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"dreambees-video-pipeline/internal/config"
	"dreambees-video-pipeline/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the ports
var (
	_ adapter.ScriptGenerator   = (*OpenAIAdapter)(nil)
	_ adapter.SpeechSynthesizer = (*OpenAIAdapter)(nil)
	_ adapter.Transcriber       = (*OpenAIAdapter)(nil)
)

const scriptPrompt = "You are writing narration for a short vertical video. " +
	"Describe the scene in this image as an engaging 3-5 sentence story. " +
	"Plain sentences only, no hashtags, no emoji, no camera directions."

// ScriptCache stores generated scripts keyed by image so identical
// images skip the vision call.
type ScriptCache interface {
	Get(ctx context.Context, imageKey string) (string, bool)
	Put(ctx context.Context, imageKey, script string) error
}

// OpenAIAdapter serves all three media ports against an OpenAI-compatible
// API: vision chat for scripts, /audio/speech for narration and
// /audio/transcriptions for word timings.
type OpenAIAdapter struct {
	apiKey          string
	base            string
	scriptModel     string
	speechModel     string
	speechVoice     string
	transcribeModel string

	storage adapter.ObjectStorage
	cache   ScriptCache
	client  *http.Client
}

func NewOpenAIAdapter(cfg config.AIConfig, storage adapter.ObjectStorage, cache ScriptCache) (*OpenAIAdapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key empty")
	}
	return &OpenAIAdapter{
		apiKey:          cfg.APIKey,
		base:            strings.TrimRight(cfg.BaseURL, "/"),
		scriptModel:     cfg.ScriptModel,
		speechModel:     cfg.SpeechModel,
		speechVoice:     cfg.SpeechVoice,
		transcribeModel: cfg.TranscribeModel,
		storage:         storage,
		cache:           cache,
		client:          &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *OpenAIAdapter) GenerateScript(ctx context.Context, imageKey string) (*adapter.ScriptResult, error) {
	if a.cache != nil {
		if script, ok := a.cache.Get(ctx, imageKey); ok {
			return &adapter.ScriptResult{Script: script, Segments: splitSegments(script)}, nil
		}
	}

	// The vision endpoint fetches the image itself, so hand it a short-lived URL.
	imageURL, err := a.storage.SignedURL(ctx, imageKey, 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("sign image url: %w", err)
	}

	reqBody := map[string]interface{}{
		"model": a.scriptModel,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": scriptPrompt},
					{"type": "image_url", "image_url": map[string]string{"url": imageURL}},
				},
			},
		},
		"max_tokens": 400,
	}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/chat/completions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai chat http %d", resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	var script string
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			script = strings.TrimSpace(c.Message.Content)
			break
		}
	}
	if script == "" {
		return nil, errors.New("no script content")
	}

	if a.cache != nil {
		// Cache write failures cost one extra vision call next time, nothing else.
		_ = a.cache.Put(ctx, imageKey, script)
	}
	return &adapter.ScriptResult{Script: script, Segments: splitSegments(script)}, nil
}

func (a *OpenAIAdapter) Synthesize(ctx context.Context, text string) ([]byte, error) {
	reqBody := map[string]interface{}{
		"model":           a.speechModel,
		"voice":           a.speechVoice,
		"input":           text,
		"response_format": "mp3",
	}
	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/audio/speech", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai speech http %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (a *OpenAIAdapter) Transcribe(ctx context.Context, filename string, audio []byte) (*adapter.TranscriptionResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, err
	}
	_ = mw.WriteField("model", a.transcribeModel)
	_ = mw.WriteField("response_format", "verbose_json")
	_ = mw.WriteField("timestamp_granularities[]", "word")
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/audio/transcriptions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai transcription http %d", resp.StatusCode)
	}

	var payload adapter.TranscriptionResult
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// splitSegments breaks a script into speakable sentences.
func splitSegments(script string) []string {
	var segments []string
	var cur strings.Builder
	for _, r := range script {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(cur.String()); s != "" {
				segments = append(segments, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		segments = append(segments, s)
	}
	if len(segments) == 0 {
		segments = []string{script}
	}
	return segments
}
