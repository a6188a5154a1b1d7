package subtitle

import "fmt"

// SyncAnalysis is a heuristic quality measure of caption-to-audio
// alignment, 0 (unusable) to 100 (clean).
type SyncAnalysis struct {
	SyncScore   int      `json:"syncScore"`
	Suggestions []string `json:"suggestions"`
}

// AnalyzeSync scores a block sequence against an audio duration.
// Deductions: 20 per block ending past the audio, 5 per overlap with the
// previous block, 2 per gap over 2s, 10 for more than 3s of unused
// trailing audio, 5 when the mean block duration leaves [300,2000]ms.
func AnalyzeSync(blocks []Block, audioDurationMs int64) SyncAnalysis {
	if len(blocks) == 0 {
		return SyncAnalysis{SyncScore: 0, Suggestions: []string{"No subtitle blocks found"}}
	}

	score := 100
	var suggestions []string
	seen := make(map[string]struct{})
	suggest := func(s string) {
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		suggestions = append(suggestions, s)
	}

	var prevEnd int64
	var totalDuration int64
	for i, b := range blocks {
		if b.End > audioDurationMs {
			score -= 20
			suggest(fmt.Sprintf("Block %d: subtitles extend beyond audio duration", i+1))
		}
		if b.Start < prevEnd {
			score -= 5
			suggest(fmt.Sprintf("Block %d: overlap with previous subtitle", i+1))
		}
		if b.Start-prevEnd > 2000 {
			score -= 2
			suggest(fmt.Sprintf("Block %d: large gap from previous subtitle", i+1))
		}
		prevEnd = b.End
		totalDuration += b.Duration()
	}

	if unused := audioDurationMs - blocks[len(blocks)-1].End; unused > 3000 {
		score -= 10
		suggest("Significant unused audio duration at the end")
	}

	if avg := totalDuration / int64(len(blocks)); avg < 300 || avg > 2000 {
		score -= 5
		suggest(fmt.Sprintf("Average block duration (%dms) is outside optimal range", avg))
	}

	if score < 0 {
		score = 0
	}
	return SyncAnalysis{SyncScore: score, Suggestions: suggestions}
}

// AnalyzeTrack parses a serialized track and scores it.
func AnalyzeTrack(content string, audioDurationMs int64) (SyncAnalysis, error) {
	blocks, err := ParseTrack(content)
	if err != nil {
		return SyncAnalysis{}, &SyncError{Reason: "failed to analyze sync points", Err: err}
	}
	return AnalyzeSync(blocks, audioDurationMs), nil
}
