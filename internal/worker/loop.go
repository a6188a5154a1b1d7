// Package worker drains the video generation queue and feeds messages
// to the pipeline.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dreambees-video-pipeline/internal/domain"
	"dreambees-video-pipeline/internal/domain/model"
	"dreambees-video-pipeline/internal/domain/ports/repository"
	"dreambees-video-pipeline/internal/infra/logging"
	"dreambees-video-pipeline/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Handler processes one decoded queue message.
type Handler interface {
	Handle(ctx context.Context, msg *model.QueueMessage) error
}

// Loop is a single queue consumer. Run several for parallelism; the
// Redis list pop is atomic, so each message lands in exactly one loop.
type Loop struct {
	queue       repository.WorkQueue
	handler     Handler
	queueName   string
	idleBackoff time.Duration
	log         *zerolog.Logger
}

func NewLoop(queue repository.WorkQueue, handler Handler, queueName string, idleBackoff time.Duration, log *zerolog.Logger) *Loop {
	return &Loop{
		queue:       queue,
		handler:     handler,
		queueName:   queueName,
		idleBackoff: idleBackoff,
		log:         log,
	}
}

// Run consumes until the context is canceled. Handler failures requeue
// the raw payload once per delivery; undecodable payloads are dropped.
func (l *Loop) Run(ctx context.Context) {
	l.log.Info().Str("queue", l.queueName).Msg("worker loop started")
	for {
		select {
		case <-ctx.Done():
			l.log.Info().Str("queue", l.queueName).Msg("worker loop stopped")
			return
		default:
		}

		raw, err := l.queue.Dequeue(ctx, l.queueName)
		if errors.Is(err, domain.ErrQueueEmpty) {
			select {
			case <-ctx.Done():
			case <-time.After(l.idleBackoff):
			}
			continue
		}
		if err != nil {
			l.log.Error().Err(err).Str("queue", l.queueName).Msg("dequeue failed")
			select {
			case <-ctx.Done():
			case <-time.After(l.idleBackoff):
			}
			continue
		}

		l.process(ctx, raw)
	}
}

func (l *Loop) process(ctx context.Context, raw []byte) {
	var msg model.QueueMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		metrics.IncQueuePoison(l.queueName)
		l.log.Error().Err(err).Str("queue", l.queueName).Msg("dropping undecodable message")
		return
	}
	ctx = logging.WithJobID(ctx, msg.JobID)
	if msg.UserID != "" {
		ctx = logging.WithUserID(ctx, msg.UserID)
	}
	log := logging.With(ctx, l.log)

	if msg.Data.Type != model.MessageTypeGenerateVideo {
		metrics.IncQueuePoison(l.queueName)
		log.Error().Str("queue", l.queueName).Str("type", msg.Data.Type).
			Msg("dropping message of unknown type")
		return
	}

	if err := l.safeHandle(ctx, &msg); err != nil {
		metrics.IncQueueRequeued(l.queueName)
		log.Error().Err(err).Msg("handler failed, requeueing message")
		if qerr := l.queue.Requeue(ctx, l.queueName, raw); qerr != nil {
			log.Error().Err(qerr).Msg("requeue failed, message lost")
		}
		return
	}
	metrics.IncQueueConsumed(l.queueName)
}

// safeHandle converts handler panics into errors so one bad job cannot
// take down the consumer.
func (l *Loop) safeHandle(ctx context.Context, msg *model.QueueMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return l.handler.Handle(ctx, msg)
}
