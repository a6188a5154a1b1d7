package repository

import "context"

// WorkQueue is a durable FIFO message queue. Pop atomicity (no two
// consumers receiving the same message) is delegated to the backing
// implementation.
type WorkQueue interface {
	Enqueue(ctx context.Context, queue string, payload []byte) error

	// Dequeue returns domain.ErrQueueEmpty when no message is available.
	Dequeue(ctx context.Context, queue string) ([]byte, error)

	// Requeue puts a raw message back for another attempt.
	Requeue(ctx context.Context, queue string, payload []byte) error
}
