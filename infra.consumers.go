package main

import (
	"context"

	"go.uber.org/zap"
)

// Consumer drains book change queues into a secondary storage.
type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

type boltDBConsumer struct {
	logger *zap.Logger
	queue  Queuer
	repo   BookStorage
}

// NewBoltDBConsumer builds the consumer keeping the bolt mirror in sync
// with the book mutations pushed by the service layer. The mirror is
// best-effort: failures are logged and the consumer moves on.
func NewBoltDBConsumer(logger *zap.Logger, q Queuer, repo BookStorage) Consumer {
	return &boltDBConsumer{logger, q, repo}
}

func (bc *boltDBConsumer) Consume(ctx context.Context, qids ...string) error {
	var event BookEvent
	var err error
	for {
		_, event, err = bc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			bc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			bc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			continue
		}

		switch event.Op {
		case OpCreate:
			if err = bc.repo.Add(ctx, event.Book.ID, event.Book); err != nil {
				bc.logger.Error("consumer: failed to mirror create", zap.String("book.id", event.Book.ID), zap.Error(err))
			}
		case OpUpdate:
			if _, err = bc.repo.Update(ctx, event.Book.ID, event.Book); err != nil {
				bc.logger.Error("consumer: failed to mirror update", zap.String("book.id", event.Book.ID), zap.Error(err))
			}
		case OpDelete:
			if err = bc.repo.Delete(ctx, event.Book.ID); err != nil {
				bc.logger.Error("consumer: failed to mirror delete", zap.String("book.id", event.Book.ID), zap.Error(err))
			}
		default:
			bc.logger.Warn("consumer: received event with unknown op", zap.String("op", event.Op), zap.String("book.id", event.Book.ID))
		}
	}
}
