// Package container provides dependency injection for the application.
package container

import (
	"log/slog"

	"github.com/dftest-dev/dftest/internal/application/ports"
	"github.com/dftest-dev/dftest/internal/application/services"
	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/infrastructure/adapters"
	"github.com/dftest-dev/dftest/internal/infrastructure/charts"
	infraconfig "github.com/dftest-dev/dftest/internal/infrastructure/config"
	infradataset "github.com/dftest-dev/dftest/internal/infrastructure/dataset"
	"github.com/dftest-dev/dftest/internal/infrastructure/inspect"
	"github.com/dftest-dev/dftest/internal/infrastructure/output"
	"github.com/dftest-dev/dftest/internal/infrastructure/system"
)

// Container holds all application dependencies.
type Container struct {
	rulesLoader      *infraconfig.Loader
	datasetLoader    *infradataset.Loader
	engineFactory    ports.EngineFactory
	inspector        *inspect.Inspector
	formatterFactory *output.FormatterFactory
	chartRenderer    *charts.Renderer
	validateUseCase  *services.ValidateDatasetUseCase
	systemCfg        *system.Config
	logger           *slog.Logger
}

// Options configure the container.
type Options struct {
	Logger           *slog.Logger
	SystemConfigPath string
	CSV              infradataset.CSVOptions
	Viewer           string // overrides the system settings when set
	Color            bool
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	// Load system config
	systemCfg, err := system.NewConfigLoader().Load(opts.SystemConfigPath)
	if err != nil {
		opts.Logger.Warn("failed to load system config, using defaults", "path", opts.SystemConfigPath, "error", err)
		systemCfg = system.DefaultConfig()
	}
	if opts.Viewer != "" {
		systemCfg.Viewer = opts.Viewer
	}

	loaderOpts := []infraconfig.LoaderOption{infraconfig.WithLogger(opts.Logger)}
	if levels, err := systemCfg.Levels(); err == nil && levels != nil {
		loaderOpts = append(loaderOpts, infraconfig.WithDefaultIntegrityLevels(levels))
	}
	rulesLoader := infraconfig.NewLoader(checks.DefaultRegistry(), loaderOpts...)

	datasetLoader := infradataset.NewLoader(opts.CSV, opts.Logger)
	engineFactory := adapters.NewEngineFactoryAdapter(opts.Logger)
	inspector := inspect.NewInspector(systemCfg, inspect.WithLogger(opts.Logger))

	renderer := charts.NewRenderer()
	renderer.Color = opts.Color

	// Wire up use case
	validateUseCase := services.NewValidateDatasetUseCase(
		rulesLoader,
		datasetLoader,
		engineFactory,
		inspector,
		opts.Logger,
	)

	return &Container{
		rulesLoader:      rulesLoader,
		datasetLoader:    datasetLoader,
		engineFactory:    engineFactory,
		inspector:        inspector,
		formatterFactory: output.NewFormatterFactory(),
		chartRenderer:    renderer,
		validateUseCase:  validateUseCase,
		systemCfg:        systemCfg,
		logger:           opts.Logger,
	}, nil
}

// ValidateDatasetUseCase returns the validation use case.
func (c *Container) ValidateDatasetUseCase() *services.ValidateDatasetUseCase {
	return c.validateUseCase
}

// RulesLoader returns the rules loader.
func (c *Container) RulesLoader() *infraconfig.Loader {
	return c.rulesLoader
}

// DatasetLoader returns the dataset loader.
func (c *Container) DatasetLoader() *infradataset.Loader {
	return c.datasetLoader
}

// FormatterFactory returns the output formatter factory.
func (c *Container) FormatterFactory() ports.OutputFormatterFactory {
	return c.formatterFactory
}

// ChartRenderer returns the terminal chart renderer.
func (c *Container) ChartRenderer() ports.ChartRenderer {
	return c.chartRenderer
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
