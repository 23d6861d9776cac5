package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docubrain/docubrain/domain/task"
)

// DefaultRedisQueue is the list key used when none is configured.
const DefaultRedisQueue = "docubrain:tasks"

// RedisBroker queues tasks on a Redis list. Delivery is at-least-once:
// BRPOP removes the message before the worker processes it, so a crash
// between pop and completion loses that delivery, and the dispatcher's
// next sweep re-enqueues the still-pending record.
type RedisBroker struct {
	client *redis.Client
	queue  string
}

var _ task.Broker = (*RedisBroker)(nil)

// NewRedisBroker connects to Redis at the given URL
// (redis://[:password@]host:port[/db]).
func NewRedisBroker(ctx context.Context, url, queue string) (*RedisBroker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if queue == "" {
		queue = DefaultRedisQueue
	}
	return &RedisBroker{client: client, queue: queue}, nil
}

// Save pushes a task onto the queue.
func (b *RedisBroker) Save(ctx context.Context, t task.Task) (task.Task, error) {
	body, err := encodeTask(t)
	if err != nil {
		return task.Task{}, err
	}
	if err := b.client.LPush(ctx, b.queue, body).Err(); err != nil {
		return task.Task{}, fmt.Errorf("push task: %w", err)
	}
	return t, nil
}

// Dequeue pops the oldest task, waiting briefly for one to arrive.
func (b *RedisBroker) Dequeue(ctx context.Context) (task.Task, bool, error) {
	res, err := b.client.BRPop(ctx, time.Second, b.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return task.Task{}, false, nil
		}
		return task.Task{}, false, fmt.Errorf("pop task: %w", err)
	}
	// BRPOP returns [key, value].
	t, err := decodeTask([]byte(res[1]))
	if err != nil {
		return task.Task{}, false, err
	}
	return t, true, nil
}

// Delete is a no-op: BRPOP already removed the message.
func (b *RedisBroker) Delete(ctx context.Context, t task.Task) error {
	return nil
}

// CountPending returns the queue length.
func (b *RedisBroker) CountPending(ctx context.Context) (int64, error) {
	n, err := b.client.LLen(ctx, b.queue).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

// Close releases the Redis connection.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}
