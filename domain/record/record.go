// Package record provides the enrichment-record domain type and its store.
package record

import (
	"time"

	"github.com/google/uuid"
)

// Record is one uploaded image awaiting (or holding) a field extraction.
//
// A record is pending while its extracted value is unset; the extraction
// worker sets the value exactly once and relocates the stored blob in the
// same step. The authorization fields are owned by a separate review
// workflow and are never written by this pipeline.
type Record struct {
	id              string
	institutionID   int
	submittedBy     string
	storagePath     string
	extractedValue  string
	extracted       bool
	referenceValue  string
	authorized      bool
	authorizedBy    string
	authStoragePath string
	createdAt       time.Time
	updatedAt       time.Time
}

// New creates a pending Record for a freshly uploaded blob.
// The identifier is generated here; timestamps are set by the store on save.
func New(institutionID int, submittedBy, storagePath string) Record {
	return Record{
		id:            uuid.NewString(),
		institutionID: institutionID,
		submittedBy:   submittedBy,
		storagePath:   storagePath,
	}
}

// Hydrate reconstructs a Record from stored fields (used by persistence).
func Hydrate(
	id string,
	institutionID int,
	submittedBy string,
	storagePath string,
	extractedValue *string,
	referenceValue string,
	authorized bool,
	authorizedBy string,
	authStoragePath string,
	createdAt, updatedAt time.Time,
) Record {
	r := Record{
		id:              id,
		institutionID:   institutionID,
		submittedBy:     submittedBy,
		storagePath:     storagePath,
		referenceValue:  referenceValue,
		authorized:      authorized,
		authorizedBy:    authorizedBy,
		authStoragePath: authStoragePath,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
	if extractedValue != nil {
		r.extractedValue = *extractedValue
		r.extracted = true
	}
	return r
}

// ID returns the record identifier.
func (r Record) ID() string { return r.id }

// InstitutionID returns the tenant/source identifier.
func (r Record) InstitutionID() int { return r.institutionID }

// SubmittedBy returns the optional uploader attribution.
func (r Record) SubmittedBy() string { return r.submittedBy }

// StoragePath returns the current object store key of the blob.
func (r Record) StoragePath() string { return r.storagePath }

// ExtractedValue returns the extracted field value and whether it is set.
func (r Record) ExtractedValue() (string, bool) {
	return r.extractedValue, r.extracted
}

// Pending reports whether the record still awaits extraction.
func (r Record) Pending() bool { return !r.extracted }

// ReferenceValue returns the human-supplied ground truth, if any.
func (r Record) ReferenceValue() string { return r.referenceValue }

// Authorized reports the review-workflow authorization flag.
func (r Record) Authorized() bool { return r.authorized }

// AuthorizedBy returns the review-workflow attribution.
func (r Record) AuthorizedBy() string { return r.authorizedBy }

// AuthStoragePath returns the review-workflow blob key.
func (r Record) AuthStoragePath() string { return r.authStoragePath }

// CreatedAt returns the insertion time; it defines dispatch ordering.
func (r Record) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last mutation time.
func (r Record) UpdatedAt() time.Time { return r.updatedAt }

// WithExtraction returns a copy with the extracted value set and the blob
// key moved to its final location. Callers must have relocated the blob
// before persisting the returned record.
func (r Record) WithExtraction(value, storagePath string) Record {
	r.extractedValue = value
	r.extracted = true
	r.storagePath = storagePath
	return r
}

// WithTimestamps returns a copy with the given timestamps.
func (r Record) WithTimestamps(createdAt, updatedAt time.Time) Record {
	r.createdAt = createdAt
	r.updatedAt = updatedAt
	return r
}
