package redis

import (
	"context"
	"errors"
	"fmt"

	"dreambees-video-pipeline/internal/domain"
	"dreambees-video-pipeline/internal/domain/ports/repository"
)

// Queue is a Redis-list work queue. Producers push to the tail and
// consumers pop from the head, so delivery order is FIFO per queue.
type Queue struct {
	client RedisClient
}

var _ repository.WorkQueue = (*Queue)(nil)

func NewQueue(client RedisClient) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Enqueue(ctx context.Context, queue string, payload []byte) error {
	if err := q.client.RPush(ctx, queue, payload); err != nil {
		return fmt.Errorf("enqueue %s: %w", queue, err)
	}
	return nil
}

func (q *Queue) Dequeue(ctx context.Context, queue string) ([]byte, error) {
	v, err := q.client.LPop(ctx, queue)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue %s: %w", queue, err)
	}
	return []byte(v), nil
}

// Requeue returns a payload to the tail so the rest of the queue keeps
// draining ahead of the retried message.
func (q *Queue) Requeue(ctx context.Context, queue string, payload []byte) error {
	if err := q.client.RPush(ctx, queue, payload); err != nil {
		return fmt.Errorf("requeue %s: %w", queue, err)
	}
	return nil
}
