package subtitle

import "fmt"

// TimestampError reports a malformed timestamp string.
type TimestampError struct {
	Value  string
	Reason string
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Value)
}

// BlockError reports one malformed track block. Index is 0 when the
// failure is not attributable to a specific block.
type BlockError struct {
	Index  int
	Reason string
}

func (e *BlockError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("block %d: %s", e.Index, e.Reason)
	}
	return e.Reason
}

// ValidationError aggregates the failures of one engine operation.
type ValidationError struct {
	Op      string
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Op
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Details[0])
}

// SyncError reports a failed synchronization analysis.
type SyncError struct {
	Reason string
	Err    error
}

func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *SyncError) Unwrap() error { return e.Err }
