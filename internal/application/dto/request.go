// Package dto contains data transfer objects for application layer use cases.
package dto

// ValidateDatasetRequest encapsulates all inputs needed to validate a dataset.
type ValidateDatasetRequest struct {
	Metadata    RequestMetadata
	DatasetPath string
	RulesPath   string
	Options     ValidateOptions
	Execution   ExecutionOptions
}

// ExecutionOptions controls how the rules are evaluated.
type ExecutionOptions struct {
	// Parallel enables the worker pool
	Parallel bool

	// MaxWorkers limits parallel evaluation (0 = default)
	MaxWorkers int

	// ChunkSize is the number of rows per task (0 = default)
	ChunkSize int
}

// ValidateOptions contains options outside evaluation itself.
type ValidateOptions struct {
	// Columns whose invalid rows are exported and opened after the run
	OpenColumns []string

	// Extra columns included next to each opened column
	IncludeColumns []string
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string
}
