package task

// Operation represents the type of task operation.
type Operation string

// Operation values for the task queue system.
const (
	// OperationExtractField runs the vision model against a stored image
	// and writes the extracted value back to its record.
	OperationExtractField Operation = "docubrain.record.extract_field"
)

// Payload keys shared by producers and consumers of extraction tasks.
const (
	PayloadKeyStorageKey = "storage_key"
	PayloadKeyRecordID   = "record_id"
	PayloadKeyFieldName  = "field_name"
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return string(o)
}

// ExtractFieldPayload builds the payload for an extraction task.
func ExtractFieldPayload(storageKey, recordID, fieldName string) map[string]any {
	return map[string]any{
		PayloadKeyStorageKey: storageKey,
		PayloadKeyRecordID:   recordID,
		PayloadKeyFieldName:  fieldName,
	}
}
