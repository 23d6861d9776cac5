// Package task provides task queue domain types for async work processing.
package task

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

// Priority represents task queue priority levels.
type Priority int

// Priority values.
const (
	PriorityBackground Priority = 1000
	PriorityNormal     Priority = 2000
	PriorityCritical   Priority = 5000
)

// Task represents an item in the queue waiting to be processed.
// Existence implies pending: there is no status column, and a consumed
// task is simply deleted.
type Task struct {
	id        int64
	dedupKey  string
	operation Operation
	priority  int
	payload   map[string]any
	createdAt time.Time
	updatedAt time.Time
}

// New creates a Task with the given operation, priority, and payload.
// The dedup key is derived from the operation and payload.
func New(operation Operation, priority Priority, payload map[string]any) Task {
	p := copyPayload(payload)
	return Task{
		dedupKey:  dedupKey(operation, p),
		operation: operation,
		priority:  int(priority),
		payload:   p,
	}
}

// Hydrate reconstructs a Task with all fields (used by brokers and stores).
func Hydrate(
	id int64,
	key string,
	operation Operation,
	priority int,
	payload map[string]any,
	createdAt, updatedAt time.Time,
) Task {
	return Task{
		id:        id,
		dedupKey:  key,
		operation: operation,
		priority:  priority,
		payload:   copyPayload(payload),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the task ID (0 until saved by a database-backed broker).
func (t Task) ID() int64 { return t.id }

// DedupKey returns the deduplication key.
func (t Task) DedupKey() string { return t.dedupKey }

// Operation returns the task operation.
func (t Task) Operation() Operation { return t.operation }

// Priority returns the task priority.
func (t Task) Priority() int { return t.priority }

// Payload returns a copy of the task payload.
func (t Task) Payload() map[string]any {
	return copyPayload(t.payload)
}

// CreatedAt returns when the task was created.
func (t Task) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt returns when the task was last updated.
func (t Task) UpdatedAt() time.Time { return t.updatedAt }

// WithID returns a copy of the task with the given ID.
func (t Task) WithID(id int64) Task {
	t.id = id
	return t
}

// WithTimestamps returns a copy of the task with the given timestamps.
func (t Task) WithTimestamps(createdAt, updatedAt time.Time) Task {
	t.createdAt = createdAt
	t.updatedAt = updatedAt
	return t
}

// PayloadJSON returns the payload as JSON bytes.
func (t Task) PayloadJSON() ([]byte, error) {
	return json.Marshal(t.payload)
}

// String extracts a string payload value by key.
func (t Task) String(key string) (string, bool) {
	return PayloadString(t.payload, key)
}

// PayloadString extracts a string value from a payload map.
func PayloadString(payload map[string]any, key string) (string, bool) {
	val, ok := payload[key]
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// dedupKey builds a unique key of the form "{operation}:{record_id}".
// Tasks without a record_id fall back to the operation alone, so only one
// such task can be queued at a time by dedup-aware brokers.
func dedupKey(operation Operation, payload map[string]any) string {
	if id, ok := PayloadString(payload, "record_id"); ok {
		return fmt.Sprintf("%s:%s", operation, id)
	}
	return operation.String()
}

func copyPayload(payload map[string]any) map[string]any {
	result := make(map[string]any, len(payload))
	maps.Copy(result, payload)
	return result
}
