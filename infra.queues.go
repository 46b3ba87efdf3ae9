package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Predefined Queue IDs, one per mutation kind.
const (
	CreateQueue = "creation"
	UpdateQueue = "updating"
	DeleteQueue = "deletion"
)

// Book change operations carried by queue events.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// BookEvent is the payload pushed on a change queue. Delete events only
// carry the book id.
type BookEvent struct {
	Op   string `json:"op"`
	Book Book   `json:"book"`
}

// Ensure *redisQueue implements Queuer.
var _ Queuer = (*redisQueue)(nil)

// Queuer describes a queue of book change events.
type Queuer interface {
	Push(ctx context.Context, qid string, event BookEvent) error
	Pop(ctx context.Context, qids ...string) (string, BookEvent, error)
}

// redisQueue represents a queue which implements the Queuer interface.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// Push enqueues a book change event onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, event BookEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, eventBytes).Err()
}

// Pop returns the first dequeued event from the list of queue ids.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, BookEvent, error) {
	var event BookEvent
	var qid string
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return qid, event, err
	}

	if err = json.Unmarshal([]byte(infos[1]), &event); err != nil {
		return qid, event, err
	}
	qid = infos[0]
	return qid, event, nil
}
