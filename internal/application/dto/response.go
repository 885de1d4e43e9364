package dto

import (
	"time"

	"github.com/dftest-dev/dftest/internal/domain/results"
)

// ValidateDatasetResponse contains the result of validating a dataset.
type ValidateDatasetResponse struct {
	// Results contains the full outcome grid
	Results *results.Results

	// Metadata contains response metadata
	Metadata ResponseMetadata

	// Diagnostics contains additional diagnostic information
	Diagnostics Diagnostics
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RequestID from the original request
	RequestID string

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time

	// Duration is how long the request took
	Duration time.Duration
}

// Diagnostics contains diagnostic information about the run.
type Diagnostics struct {
	// Warnings are non-fatal issues encountered
	Warnings []string
}
