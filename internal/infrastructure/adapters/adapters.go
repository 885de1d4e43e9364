// Package adapters provides infrastructure adapters that implement application ports.
// These adapters wrap existing infrastructure components to satisfy port interfaces.
package adapters

import (
	"log/slog"

	"github.com/dftest-dev/dftest/internal/application/dto"
	"github.com/dftest-dev/dftest/internal/application/ports"
	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/rules"
	infraconfig "github.com/dftest-dev/dftest/internal/infrastructure/config"
	infradataset "github.com/dftest-dev/dftest/internal/infrastructure/dataset"
	"github.com/dftest-dev/dftest/internal/infrastructure/engine"
	"github.com/dftest-dev/dftest/internal/infrastructure/inspect"
	"github.com/dftest-dev/dftest/internal/infrastructure/system"
)

// Ensure adapters implement ports at compile time
var (
	_ ports.RulesLoader          = (*infraconfig.Loader)(nil)
	_ ports.DatasetLoader        = (*infradataset.Loader)(nil)
	_ ports.SystemConfigProvider = (*system.ConfigLoader)(nil)
	_ ports.RowInspector         = (*inspect.Inspector)(nil)
	_ ports.ValidationEngine     = (*engine.Engine)(nil)
	_ ports.EngineFactory        = (*EngineFactoryAdapter)(nil)
)

// EngineFactoryAdapter creates engines from request execution options.
type EngineFactoryAdapter struct {
	logger *slog.Logger
}

// NewEngineFactoryAdapter creates a new engine factory adapter.
func NewEngineFactoryAdapter(logger *slog.Logger) *EngineFactoryAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EngineFactoryAdapter{logger: logger}
}

// CreateEngine implements ports.EngineFactory.
func (f *EngineFactoryAdapter) CreateEngine(ds dataset.Dataset, cfg *rules.Config, opts dto.ExecutionOptions) ports.ValidationEngine {
	return engine.New(ds, cfg,
		engine.WithExecutionConfig(ExecutionConfig(opts)),
		engine.WithLogger(f.logger),
	)
}

// ExecutionConfig maps request options onto the engine's configuration.
// Zero values keep the engine defaults.
func ExecutionConfig(opts dto.ExecutionOptions) engine.ExecutionConfig {
	cfg := engine.DefaultExecutionConfig()
	cfg.Parallel = opts.Parallel
	if opts.MaxWorkers > 0 {
		cfg.MaxWorkers = opts.MaxWorkers
	}
	if opts.ChunkSize > 0 {
		cfg.ChunkSize = opts.ChunkSize
	}
	return cfg
}
