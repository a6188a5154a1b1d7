package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxTimestampMs is the largest representable timestamp, 99:59:59,999.
const MaxTimestampMs int64 = 359999999

var timestampRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2},\d{3}$`)

// ParseTimestamp parses a strict HH:MM:SS,mmm timestamp into milliseconds.
func ParseTimestamp(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	if !timestampRe.MatchString(clean) {
		return 0, &TimestampError{Value: clean, Reason: "invalid timestamp format"}
	}

	timePart, msPart, _ := strings.Cut(clean, ",")
	parts := strings.Split(timePart, ":")

	hours, _ := strconv.ParseInt(parts[0], 10, 64)
	minutes, _ := strconv.ParseInt(parts[1], 10, 64)
	seconds, _ := strconv.ParseInt(parts[2], 10, 64)
	if minutes > 59 || seconds > 59 {
		return 0, &TimestampError{Value: clean, Reason: "invalid time values in timestamp"}
	}

	ms, _ := strconv.ParseInt(msPart, 10, 64)
	total := hours*3600000 + minutes*60000 + seconds*1000 + ms
	if total > MaxTimestampMs {
		return 0, &TimestampError{Value: clean, Reason: "timestamp exceeds maximum value"}
	}
	return total, nil
}

// FormatTimestamp is the exact inverse of ParseTimestamp. Out-of-range
// input is clamped rather than overflowed: negatives format as zero and
// anything above the maximum formats as the maximum.
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	if ms > MaxTimestampMs {
		ms = MaxTimestampMs
	}
	hours := ms / 3600000
	minutes := (ms % 3600000) / 60000
	seconds := (ms % 60000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
