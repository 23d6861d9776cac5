// Package broker provides message-queue backed task.Broker implementations.
package broker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/docubrain/docubrain/domain/task"
)

// envelope is the wire format shared by the Redis and AMQP brokers.
type envelope struct {
	DedupKey  string         `json:"dedup_key"`
	Operation string         `json:"operation"`
	Priority  int            `json:"priority"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func encodeTask(t task.Task) ([]byte, error) {
	createdAt := t.CreatedAt()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	body, err := json.Marshal(envelope{
		DedupKey:  t.DedupKey(),
		Operation: t.Operation().String(),
		Priority:  t.Priority(),
		Payload:   t.Payload(),
		CreatedAt: createdAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode task: %w", err)
	}
	return body, nil
}

func decodeTask(body []byte) (task.Task, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return task.Task{}, fmt.Errorf("decode task: %w", err)
	}
	return task.Hydrate(
		0,
		env.DedupKey,
		task.Operation(env.Operation),
		env.Priority,
		env.Payload,
		env.CreatedAt,
		env.CreatedAt,
	), nil
}
