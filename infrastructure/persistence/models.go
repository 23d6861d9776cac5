// Package persistence provides database storage implementations.
package persistence

import "time"

// RecordModel is the GORM model for enrichment records.
type RecordModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	InstitutionID   int       `gorm:"column:institution_id;not null"`
	SubmittedBy     *string   `gorm:"column:submitted_by"`
	StoragePath     string    `gorm:"column:storage_path;not null"`
	ExtractedValue  *string   `gorm:"column:extracted_value;index"`
	ReferenceValue  *string   `gorm:"column:reference_value"`
	Authorized      bool      `gorm:"column:authorized;default:false"`
	AuthorizedBy    *string   `gorm:"column:authorized_by"`
	AuthStoragePath *string   `gorm:"column:auth_storage_path"`
	CreatedAt       time.Time `gorm:"column:created_at;index"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name for records.
func (RecordModel) TableName() string { return "opd_records" }

// TaskModel is the GORM model for queued tasks.
type TaskModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	DedupKey  string    `gorm:"column:dedup_key;uniqueIndex"`
	Type      string    `gorm:"column:type;not null"`
	Payload   []byte    `gorm:"column:payload"`
	Priority  int       `gorm:"column:priority;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name for tasks.
func (TaskModel) TableName() string { return "tasks" }
