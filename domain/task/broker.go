package task

import "context"

// Broker is the queue transport between the dispatcher and workers.
//
// Delivery is at-least-once: a task may be observed by more than one
// worker, and the dispatcher may re-enqueue a task for a record that is
// still in flight. Consumers must tolerate duplicates.
//
// Save enqueues a task; brokers with a durable backing table dedup on the
// task's dedup key. Dequeue returns the next task and whether one was
// found. Delete acknowledges a consumed task; brokers whose Dequeue
// already removes the message treat it as a no-op.
type Broker interface {
	Save(ctx context.Context, t Task) (Task, error)
	Dequeue(ctx context.Context) (Task, bool, error)
	Delete(ctx context.Context, t Task) error
	CountPending(ctx context.Context) (int64, error)
}
