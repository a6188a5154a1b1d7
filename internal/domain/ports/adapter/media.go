package adapter

import "context"

// ScriptResult is a narration script derived from an image, split into
// speakable segments.
type ScriptResult struct {
	Script   string   `json:"script"`
	Segments []string `json:"segments"`
}

// ScriptGenerator turns an uploaded image into a short narration script.
// Implementations may cache by image key.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, imageKey string) (*ScriptResult, error)
}

// SpeechSynthesizer renders narration audio (MP3) for a script.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// TranscribedWord is one word with vendor timing in seconds.
type TranscribedWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptionResult carries the transcript text plus best-effort
// per-word timings; Words may be empty.
type TranscriptionResult struct {
	Text  string            `json:"text"`
	Words []TranscribedWord `json:"words"`
}

// Transcriber produces a transcript with word-level timestamps from
// synthesized audio.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (*TranscriptionResult, error)
}
