package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docubrain/docubrain/domain/task"
	"github.com/docubrain/docubrain/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskStore is a database-backed task.Broker. Tasks are deduplicated on
// their dedup key at enqueue time; consumption is a read followed by an
// explicit delete, so a crashed consumer leaves the task queued.
type TaskStore struct {
	db     database.Database
	mapper TaskMapper
}

// NewTaskStore creates a new TaskStore.
func NewTaskStore(db database.Database) *TaskStore {
	return &TaskStore{db: db}
}

// Save enqueues a task, upserting on the dedup key so re-dispatching an
// already queued record refreshes the existing row instead of duplicating it.
func (s *TaskStore) Save(ctx context.Context, t task.Task) (task.Task, error) {
	now := time.Now().UTC()
	createdAt, updatedAt := touchTimestamps(t.CreatedAt(), now)
	t = t.WithTimestamps(createdAt, updatedAt)

	model, err := s.mapper.ToModel(t)
	if err != nil {
		return task.Task{}, err
	}

	result := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "payload", "priority", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return task.Task{}, fmt.Errorf("save task: %w", result.Error)
	}

	return s.mapper.ToDomain(model)
}

// Dequeue returns the highest-priority, oldest pending task. The task stays
// queued until Delete is called, so delivery is at-least-once.
func (s *TaskStore) Dequeue(ctx context.Context) (task.Task, bool, error) {
	var model TaskModel
	result := s.db.Session(ctx).
		Order("priority DESC").
		Order("created_at ASC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return task.Task{}, false, nil
		}
		return task.Task{}, false, fmt.Errorf("dequeue task: %w", result.Error)
	}

	t, err := s.mapper.ToDomain(model)
	if err != nil {
		return task.Task{}, false, err
	}
	return t, true, nil
}

// Delete removes a consumed task from the queue.
func (s *TaskStore) Delete(ctx context.Context, t task.Task) error {
	if result := s.db.Session(ctx).Delete(&TaskModel{}, "id = ?", t.ID()); result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}
	return nil
}

// CountPending returns the number of queued tasks.
func (s *TaskStore) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if result := s.db.Session(ctx).Model(&TaskModel{}).Count(&count); result.Error != nil {
		return 0, fmt.Errorf("count tasks: %w", result.Error)
	}
	return count, nil
}
