package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/docubrain/docubrain/domain/record"
	"github.com/docubrain/docubrain/domain/task"
)

// RecordMapper maps between domain Record and persistence RecordModel.
type RecordMapper struct{}

// ToDomain converts a RecordModel to a domain Record.
func (m RecordMapper) ToDomain(e RecordModel) record.Record {
	return record.Hydrate(
		e.ID,
		e.InstitutionID,
		deref(e.SubmittedBy),
		e.StoragePath,
		e.ExtractedValue,
		deref(e.ReferenceValue),
		e.Authorized,
		deref(e.AuthorizedBy),
		deref(e.AuthStoragePath),
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Record to a RecordModel.
func (m RecordMapper) ToModel(r record.Record) RecordModel {
	model := RecordModel{
		ID:              r.ID(),
		InstitutionID:   r.InstitutionID(),
		SubmittedBy:     optional(r.SubmittedBy()),
		StoragePath:     r.StoragePath(),
		ReferenceValue:  optional(r.ReferenceValue()),
		Authorized:      r.Authorized(),
		AuthorizedBy:    optional(r.AuthorizedBy()),
		AuthStoragePath: optional(r.AuthStoragePath()),
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
	}
	if value, ok := r.ExtractedValue(); ok {
		model.ExtractedValue = &value
	}
	return model
}

// TaskMapper maps between domain Task and persistence TaskModel.
type TaskMapper struct{}

// ToDomain converts a TaskModel to a domain Task.
func (m TaskMapper) ToDomain(e TaskModel) (task.Task, error) {
	payload := map[string]any{}
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return task.Task{}, fmt.Errorf("unmarshal task payload: %w", err)
		}
	}

	return task.Hydrate(
		e.ID,
		e.DedupKey,
		task.Operation(e.Type),
		e.Priority,
		payload,
		e.CreatedAt,
		e.UpdatedAt,
	), nil
}

// ToModel converts a domain Task to a TaskModel.
func (m TaskMapper) ToModel(t task.Task) (TaskModel, error) {
	payloadJSON, err := t.PayloadJSON()
	if err != nil {
		return TaskModel{}, fmt.Errorf("marshal task payload: %w", err)
	}

	return TaskModel{
		ID:        t.ID(),
		DedupKey:  t.DedupKey(),
		Type:      t.Operation().String(),
		Payload:   payloadJSON,
		Priority:  t.Priority(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// touchTimestamps fills creation/update times the way the stores expect:
// created_at set once, updated_at refreshed on every save.
func touchTimestamps(createdAt time.Time, now time.Time) (time.Time, time.Time) {
	if createdAt.IsZero() {
		return now, now
	}
	return createdAt, now
}
