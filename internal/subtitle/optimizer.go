package subtitle

import (
	"fmt"
	"strings"
)

// Options are the caller-supplied timing constraints; all durations are
// milliseconds. There are no hidden defaults.
type Options struct {
	MinDuration        int64
	MaxDuration        int64
	CharReadingSpeed   int64 // ms per character
	PauseBetweenBlocks int64
	SentencePause      int64
	AudioDuration      int64
}

// WordTiming is one transcribed word with millisecond offsets.
type WordTiming struct {
	Word  string `json:"word"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// minGapMs is the enforced minimum gap between consecutive blocks.
const minGapMs int64 = 50

// Optimizer turns raw text or word timings into a gap-respecting,
// duration-bounded block sequence. It is pure and deterministic.
type Optimizer struct {
	opts Options
}

func NewOptimizer(opts Options) *Optimizer {
	return &Optimizer{opts: opts}
}

// OptimizeToWords produces one block per word. With usable word timings
// it follows them, enforcing the minimum gap and duration bounds; without
// them it estimates timing from character counts over the audio duration.
func (o *Optimizer) OptimizeToWords(blocks []Block, timings []WordTiming) ([]Block, error) {
	if len(timings) > 0 {
		return o.fromWordTimings(timings)
	}
	return o.fromEstimation(blocks)
}

func (o *Optimizer) validTiming(t WordTiming) bool {
	return t.Start >= 0 &&
		t.End >= t.Start &&
		t.End <= o.opts.AudioDuration &&
		strings.TrimSpace(t.Word) != ""
}

func (o *Optimizer) fromWordTimings(timings []WordTiming) ([]Block, error) {
	valid := timings[:0:0]
	for _, t := range timings {
		if o.validTiming(t) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return nil, &ValidationError{Op: "optimize words", Details: []string{"no valid word timings found"}}
	}

	out := make([]Block, 0, len(valid))
	var prevEnd int64
	for i, t := range valid {
		start, end := t.Start, t.End

		// The minimum gap applies between blocks; the first block may
		// start at offset zero.
		if i > 0 && start < prevEnd+minGapMs {
			start = prevEnd + minGapMs
		}
		if end <= start+o.opts.MinDuration {
			end = start + o.opts.MinDuration
		}
		if end > o.opts.AudioDuration {
			end = o.opts.AudioDuration
			// Shrink from the start to preserve the minimum duration.
			if end-start < o.opts.MinDuration {
				start = end - o.opts.MinDuration
				if start < 0 {
					start = 0
				}
			}
		}

		out = append(out, Block{
			Index: i + 1,
			Start: start,
			End:   end,
			Text:  sanitizeWord(t.Word),
		})
		prevEnd = end
	}
	return validateBlocks(out)
}

func (o *Optimizer) fromEstimation(blocks []Block) ([]Block, error) {
	var words []string
	for _, b := range blocks {
		words = append(words, strings.Fields(b.Text)...)
	}
	if len(words) == 0 {
		return nil, &ValidationError{Op: "optimize words", Details: []string{"no words to time"}}
	}

	total := int64(len(words))
	avg := clamp((o.opts.AudioDuration-total*minGapMs)/total, o.opts.MinDuration, o.opts.MaxDuration)

	out := make([]Block, 0, len(words))
	var current int64
	for i, w := range words {
		word := sanitizeWord(w)

		base := int64(len(word)) * o.opts.CharReadingSpeed
		if endsSentence(word) {
			base += o.opts.SentencePause
		}
		duration := base
		if d := avg * 8 / 10; duration < d {
			duration = d
		}
		if duration < o.opts.MinDuration {
			duration = o.opts.MinDuration
		}
		if duration > o.opts.MaxDuration {
			duration = o.opts.MaxDuration
		}
		if hard := avg * 3 / 2; duration > hard {
			duration = hard
		}

		remaining := o.opts.AudioDuration - current
		if duration > remaining {
			duration = remaining - 100
			if duration < o.opts.MinDuration {
				duration = o.opts.MinDuration
			}
		}

		out = append(out, Block{
			Index: i + 1,
			Start: current,
			End:   current + duration,
			Text:  word,
		})

		gap := minGapMs
		if left := remaining - duration; left < gap {
			gap = left
			if gap < 0 {
				gap = 0
			}
		}
		current += duration + gap
	}
	return validateBlocks(out)
}

// validateBlocks enforces the block invariants after timing adjustment.
func validateBlocks(blocks []Block) ([]Block, error) {
	var details []string
	for i := range blocks {
		b := &blocks[i]
		if b.End <= b.Start {
			details = append(details, fmt.Sprintf("block %d: end %d not after start %d", b.Index, b.End, b.Start))
		}
		if strings.TrimSpace(b.Text) == "" {
			b.Text = " "
		}
	}
	if len(details) > 0 {
		return nil, &ValidationError{Op: "optimize words", Details: details}
	}
	return blocks, nil
}

func sanitizeWord(w string) string {
	s := strings.TrimSpace(w)
	s = strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
	if s == "" {
		return " "
	}
	return s
}

func endsSentence(w string) bool {
	if w == "" {
		return false
	}
	return strings.ContainsRune(".!?,;", rune(w[len(w)-1]))
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ConservativeRetry returns adjusted options for the single bounded retry
// applied when a track scores below the sync threshold: longer minimum
// duration and larger pauses.
func ConservativeRetry(opts Options) Options {
	opts.MinDuration = 500
	opts.PauseBetweenBlocks = 250
	opts.SentencePause = 600
	return opts
}
