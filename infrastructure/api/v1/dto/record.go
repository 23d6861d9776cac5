// Package dto defines the JSON shapes returned by the v1 API.
package dto

import (
	"time"

	"github.com/docubrain/docubrain/domain/record"
)

// RecordResponse is the JSON representation of an enrichment record.
type RecordResponse struct {
	ID             string    `json:"id"`
	InstitutionID  int       `json:"institution_id"`
	SubmittedBy    string    `json:"submitted_by,omitempty"`
	StoragePath    string    `json:"storage_path"`
	ExtractedValue *string   `json:"extracted_value"`
	Pending        bool      `json:"pending"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RecordListResponse wraps a page of records with pagination metadata.
type RecordListResponse struct {
	Data []RecordResponse `json:"data"`
	Meta ListMeta         `json:"meta"`
}

// ListMeta carries pagination metadata.
type ListMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// UploadResponse lists the storage keys written by an upload request.
type UploadResponse struct {
	UploadedFiles []string `json:"uploaded_files"`
}

// QueueResponse reports the task queue depth.
type QueueResponse struct {
	Pending int64 `json:"pending"`
}

// FromRecord converts a domain record to its JSON representation.
func FromRecord(r record.Record) RecordResponse {
	resp := RecordResponse{
		ID:            r.ID(),
		InstitutionID: r.InstitutionID(),
		SubmittedBy:   r.SubmittedBy(),
		StoragePath:   r.StoragePath(),
		Pending:       r.Pending(),
		CreatedAt:     r.CreatedAt(),
		UpdatedAt:     r.UpdatedAt(),
	}
	if value, ok := r.ExtractedValue(); ok {
		resp.ExtractedValue = &value
	}
	return resp
}

// FromRecords converts a slice of domain records.
func FromRecords(records []record.Record) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i, r := range records {
		out[i] = FromRecord(r)
	}
	return out
}
