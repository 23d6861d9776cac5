package record

// WithID filters by the record identifier.
func WithID(id string) Option {
	return WithCondition("id", id)
}

// WithInstitutionID filters by the "institution_id" column.
func WithInstitutionID(id int) Option {
	return WithCondition("institution_id", id)
}

// WithStoragePath filters by the "storage_path" column.
func WithStoragePath(path string) Option {
	return WithCondition("storage_path", path)
}

// Pending filters for records whose extraction has not completed.
func Pending() Option {
	return WithWhere("extracted_value IS NULL")
}

// Extracted filters for records whose extraction has completed.
func Extracted() Option {
	return WithWhere("extracted_value IS NOT NULL")
}

// OldestFirst orders by creation time ascending, the dispatch order.
func OldestFirst() Option {
	return WithOrderAsc("created_at")
}

// NewestFirst orders by creation time descending.
func NewestFirst() Option {
	return WithOrderDesc("created_at")
}
