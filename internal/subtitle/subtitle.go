// Package subtitle is the caption timing engine: timestamp parsing and
// formatting, track parsing and serialization, per-word timing
// optimization, and synchronization scoring. Everything here is pure and
// synchronous; identical inputs always produce identical output.
package subtitle

// Improve builds a word-by-word caption track for rawText. When word
// timings are present the track follows them; otherwise timing is
// estimated over the audio duration. The result is the serialized track.
func Improve(rawText string, opts Options, timings []WordTiming) (string, error) {
	text := rawText
	if text == "" {
		text = " "
	}
	// Seed block carrying the full text; the optimizer re-times it into
	// one block per word.
	seed := []Block{{Index: 1, Start: 0, End: 1000, Text: text}}

	optimized, err := NewOptimizer(opts).OptimizeToWords(seed, timings)
	if err != nil {
		return "", err
	}
	return Serialize(optimized), nil
}
