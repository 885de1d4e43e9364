// Package engine evaluates a rules.Config against a dataset.
package engine

import (
	"runtime"
)

// Concurrency constants for parallel evaluation.
const (
	// MinWorkers is the minimum number of concurrent evaluation workers,
	// ensuring reasonable parallelism even on single-core systems.
	MinWorkers = 4

	// DefaultChunkSize is the number of rows one task evaluates.
	DefaultChunkSize = 4096

	// DefaultMaxRecordedErrors caps the cell errors kept per binding.
	DefaultMaxRecordedErrors = 100
)

// ExecutionConfig controls evaluation behavior.
type ExecutionConfig struct {
	MaxWorkers        int
	ChunkSize         int
	MaxRecordedErrors int
	Parallel          bool
}

// DefaultExecutionConfig returns sensible defaults for parallel evaluation.
func DefaultExecutionConfig() ExecutionConfig {
	// Default to NumCPU, but at least MinWorkers
	workers := runtime.NumCPU()
	if workers < MinWorkers {
		workers = MinWorkers
	}

	return ExecutionConfig{
		MaxWorkers:        workers,
		ChunkSize:         DefaultChunkSize,
		MaxRecordedErrors: DefaultMaxRecordedErrors,
		Parallel:          true,
	}
}

func (c ExecutionConfig) normalized() ExecutionConfig {
	def := DefaultExecutionConfig()
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = def.MaxWorkers
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}
	if c.MaxRecordedErrors <= 0 {
		c.MaxRecordedErrors = def.MaxRecordedErrors
	}
	return c
}
