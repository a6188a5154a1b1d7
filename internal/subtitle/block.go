package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Block is one timed caption unit. Start and End are millisecond offsets
// from track start; End > Start always holds for blocks this package
// produces, and Text is never empty (a single space is substituted).
type Block struct {
	Index int
	Start int64
	End   int64
	Text  string
}

func (b Block) Duration() int64 { return b.End - b.Start }

var timingLineRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2},\d{3} --> \d{2}:\d{2}:\d{2},\d{3}$`)

// ParseTrack parses a caption track: blocks separated by blank lines,
// each block an index line, a "start --> end" line, and one or more text
// lines. Empty text is coerced to a single space; structural problems
// (missing lines, index mismatch, bad timestamps, end <= start) fail
// hard, with every malformed block reported.
func ParseTrack(content string) ([]Block, error) {
	// Trim newlines only; a whitespace-only text line must survive to
	// the coercion branch in parseBlock.
	clean := strings.Trim(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	var raw []string
	for _, b := range strings.Split(clean, "\n\n") {
		if strings.TrimSpace(b) != "" {
			raw = append(raw, b)
		}
	}
	if len(raw) == 0 {
		return nil, &BlockError{Reason: "empty track"}
	}

	blocks := make([]Block, 0, len(raw))
	var details []string
	for i, b := range raw {
		blk, err := parseBlock(b, i+1)
		if err != nil {
			details = append(details, err.Error())
			continue
		}
		blocks = append(blocks, blk)
	}
	if len(details) > 0 {
		return nil, &ValidationError{Op: "parse track", Details: details}
	}
	return blocks, nil
}

func parseBlock(content string, index int) (Block, error) {
	lines := strings.Split(strings.Trim(content, "\n"), "\n")
	if len(lines) < 3 {
		return Block{}, &BlockError{Index: index, Reason: fmt.Sprintf("insufficient lines: %d", len(lines))}
	}

	got, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || got != index {
		return Block{}, &BlockError{Index: index, Reason: fmt.Sprintf("index mismatch (expected %d, got %q)", index, lines[0])}
	}

	timing := strings.TrimSpace(lines[1])
	if !timingLineRe.MatchString(timing) {
		return Block{}, &BlockError{Index: index, Reason: fmt.Sprintf("invalid timing line %q", timing)}
	}
	startStr, endStr, _ := strings.Cut(timing, " --> ")
	start, err := ParseTimestamp(startStr)
	if err != nil {
		return Block{}, &BlockError{Index: index, Reason: err.Error()}
	}
	end, err := ParseTimestamp(endStr)
	if err != nil {
		return Block{}, &BlockError{Index: index, Reason: err.Error()}
	}
	if end <= start {
		return Block{}, &BlockError{Index: index, Reason: "end time must be greater than start time"}
	}

	text := strings.TrimSpace(strings.Join(lines[2:], "\n"))
	if text == "" {
		text = " "
	}
	return Block{Index: index, Start: start, End: end, Text: text}, nil
}

// Serialize renders blocks in the byte-reproducible track format:
// "{index}\n{start} --> {end}\n{text}\n" per block, blocks separated by
// a blank line, with a single trailing newline.
func Serialize(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		text := b.Text
		if strings.TrimSpace(text) == "" {
			text = " "
		}
		parts = append(parts, fmt.Sprintf("%d\n%s --> %s\n%s",
			b.Index, FormatTimestamp(b.Start), FormatTimestamp(b.End), text))
	}
	return strings.Join(parts, "\n\n") + "\n"
}
